// Package editableevent implements the typed, string-addressable view over
// Events used by the event editor, and the session that mediates between
// user edits and a pattern's EventList.
package editableevent

import (
	"fmt"
	"strconv"
	"strings"

	"seqcore/internal/eventlist"
	"seqcore/internal/midievent"
	"seqcore/internal/miditime"
)

// Category classifies an event for the editor, per spec.md §4.5.
type Category int

const (
	ChannelMessage Category = iota
	SystemMessage
	MetaEvent
	SeqSpecEvent
)

// TimestampFormat selects how a row's timestamp is rendered/parsed.
type TimestampFormat int

const (
	Measures TimestampFormat = iota
	Time
	Pulses
)

// nameEntry is one (index, value) <-> name row in a lookup table.
type nameEntry struct {
	value midievent.MidiByte
	name  string
}

// table implements spec.md §9's "constant table, explicit NotFound"
// dispatch idiom: a flat slice of (value, name) pairs, case-insensitive
// and abbreviation-tolerant on lookup, generalized from the teacher's
// iota-block + XxxToString switch idiom (internal/types/types.go).
type table []nameEntry

func (tb table) name(v midievent.MidiByte) (string, bool) {
	for _, e := range tb {
		if e.value == v {
			return e.name, true
		}
	}
	return "", false
}

func (tb table) value(name string) (midievent.MidiByte, bool) {
	name = strings.TrimSpace(name)
	for _, e := range tb {
		if strings.EqualFold(e.name, name) {
			return e.value, true
		}
	}
	for _, e := range tb {
		if len(name) > 0 && strings.HasPrefix(strings.ToLower(e.name), strings.ToLower(name)) {
			return e.value, true
		}
	}
	return 0, false
}

// ChannelTable names channel-voice statuses.
var ChannelTable = table{
	{midievent.StatusNoteOff, "Note Off"},
	{midievent.StatusNoteOn, "Note On"},
	{midievent.StatusAftertouch, "Aftertouch"},
	{midievent.StatusController, "Control Change"},
	{midievent.StatusProgramChange, "Program Change"},
	{midievent.StatusChannelPressure, "Channel Pressure"},
	{midievent.StatusPitchWheel, "Pitch Wheel"},
}

// SystemTable names system-common/realtime statuses.
var SystemTable = table{
	{midievent.StatusSysex, "Sysex"},
	{midievent.StatusSysexEnd, "Sysex End"},
}

// MetaTable names meta event types. Types marked non-editable are still
// looked up for display, but rejected by Session.Insert, per spec.md §9.
var MetaTable = table{
	{midievent.MetaSeqNumber, "Sequence Number"},
	{midievent.MetaText, "Text"},
	{midievent.MetaCopyright, "Copyright"},
	{midievent.MetaTrackName, "Track Name"},
	{midievent.MetaInstrument, "Instrument Name"},
	{midievent.MetaLyric, "Lyric"},
	{midievent.MetaMarker, "Marker"},
	{midievent.MetaCuePoint, "Cue Point"},
	{midievent.MetaChannelPfx, "Channel Prefix"},
	{midievent.MetaTrackEnd, "Track End"},
	{midievent.MetaTempo, "Tempo"},
	{midievent.MetaSmpteOffset, "SMPTE Offset"},
	{midievent.MetaTimeSig, "Time Signature"},
	{midievent.MetaKeySig, "Key Signature"},
	{midievent.MetaSeqSpec, "Sequencer Specific"},
}

// seqSpecEntry is one (tag, name) row for a seqspec sub-kind. Seqspec tags
// are 32-bit (seq66's "control tag" constants), too wide for MidiByte, so
// they get their own uint32-keyed table rather than sharing ChannelTable/
// SystemTable/MetaTable's 16-bit value type.
type seqSpecEntry struct {
	tag  uint32
	name string
}

// SeqSpecTable names seqspec sub-kinds the core is aware of (triggers,
// colors, mute-groups — carried as opaque payloads per spec.md's Glossary).
var SeqSpecTable = []seqSpecEntry{
	{0x24240001, "Triggers"},
	{0x24240002, "Colors"},
	{0x24240003, "Mute Groups"},
}

// seqSpecName looks up a seqspec tag's display name.
func seqSpecName(tag uint32) (string, bool) {
	for _, e := range SeqSpecTable {
		if e.tag == tag {
			return e.name, true
		}
	}
	return "", false
}

// seqSpecTag looks up a seqspec sub-kind's tag by its display name,
// case-insensitively.
func seqSpecTag(name string) (uint32, bool) {
	name = strings.TrimSpace(name)
	for _, e := range SeqSpecTable {
		if strings.EqualFold(e.name, name) {
			return e.tag, true
		}
	}
	return 0, false
}

// nonEditableMeta are meta types the spec resolves (§9) as rejected by insert.
var nonEditableMeta = map[midievent.MidiByte]bool{
	midievent.MetaChannelPfx: true,
	midievent.MetaTrackEnd:   true,
}

// EditableEvent is the editor-facing view over one Event.
type EditableEvent struct {
	Raw             *midievent.Event
	Category        Category
	TimestampFormat TimestampFormat
}

func categoryOf(e *midievent.Event) Category {
	switch {
	case e.Status == midievent.StatusMeta && midievent.MidiByte(e.Channel) == midievent.MetaSeqSpec:
		return SeqSpecEvent
	case e.Status == midievent.StatusMeta:
		return MetaEvent
	case e.Status == midievent.StatusSysex || e.Status == midievent.StatusSysexEnd:
		return SystemMessage
	default:
		return ChannelMessage
	}
}

// seqSpecPayloadTag reads the 4-byte big-endian sub-kind tag that leads a
// seqspec meta event's sysex payload.
func seqSpecPayloadTag(sysex []byte) (uint32, bool) {
	if len(sysex) < 4 {
		return 0, false
	}
	return uint32(sysex[0])<<24 | uint32(sysex[1])<<16 | uint32(sysex[2])<<8 | uint32(sysex[3]), true
}

// New wraps a raw event for editing.
func New(e *midievent.Event, tsFormat TimestampFormat) *EditableEvent {
	return &EditableEvent{Raw: e, Category: categoryOf(e), TimestampFormat: tsFormat}
}

// FormatTimestamp renders the timestamp per the session's TimestampFormat.
func (ee *EditableEvent) FormatTimestamp(timing miditime.Timing) string {
	switch ee.TimestampFormat {
	case Measures:
		return miditime.PulsesToStringBBT(ee.Raw.Timestamp, timing)
	case Time:
		return miditime.PulsesToStringHMS(ee.Raw.Timestamp, timing)
	default:
		return strconv.FormatInt(int64(ee.Raw.Timestamp), 10)
	}
}

// StatusString renders the human-readable status name.
func (ee *EditableEvent) StatusString() string {
	switch ee.Category {
	case ChannelMessage:
		if name, ok := ChannelTable.name(ee.Raw.Status); ok {
			return name
		}
	case SystemMessage:
		if name, ok := SystemTable.name(ee.Raw.Status); ok {
			return name
		}
	case MetaEvent:
		if name, ok := MetaTable.name(midievent.MidiByte(ee.Raw.Channel)); ok {
			return name
		}
	case SeqSpecEvent:
		if tag, ok := seqSpecPayloadTag(ee.Raw.Sysex); ok {
			if name, ok := seqSpecName(tag); ok {
				return name
			}
		}
	}
	return "Unknown"
}

// ChannelString renders the channel number, or "-" for non-channel events.
func (ee *EditableEvent) ChannelString() string {
	if ee.Category != ChannelMessage {
		return "-"
	}
	return strconv.Itoa(int(ee.Raw.Channel) + 1) // 1-based for display
}

// DataString renders the event's payload per its category, following
// spec.md §4.5's analyze() rules (2-decimal BPM for tempo, "nn/dd cc bb"
// for time signature).
func (ee *EditableEvent) DataString() string {
	switch {
	case ee.Raw.IsTempo():
		return fmt.Sprintf("%.2f", bpmFromSysex(ee.Raw.Sysex))
	case ee.Raw.IsTimeSignature():
		return timeSigString(ee.Raw.Sysex)
	case ee.Category == MetaEvent:
		return string(ee.Raw.Sysex)
	case ee.Category == SeqSpecEvent:
		if tag, ok := seqSpecPayloadTag(ee.Raw.Sysex); ok {
			return string(ee.Raw.Sysex[4:]) + fmt.Sprintf(" (tag 0x%08x)", tag)
		}
		return string(ee.Raw.Sysex)
	default:
		return fmt.Sprintf("%d %d", ee.Raw.D0, ee.Raw.D1)
	}
}

func bpmFromSysex(sysex []byte) float64 {
	if len(sysex) < 3 {
		return 0
	}
	return miditime.TempoFromBytes([3]byte{sysex[0], sysex[1], sysex[2]})
}

func timeSigString(sysex []byte) string {
	if len(sysex) < 4 {
		return ""
	}
	nn := sysex[0]
	dd := 1 << sysex[1]
	cc := sysex[2]
	bb := sysex[3]
	return fmt.Sprintf("%d/%d %d %d", nn, dd, cc, bb)
}

// LinkTime renders the linked mate's timestamp, or "" if unlinked.
func (ee *EditableEvent) LinkTime(timing miditime.Timing) string {
	if !ee.Raw.IsLinked() {
		return ""
	}
	linked := New(ee.Raw.LinkedEvent(), ee.TimestampFormat)
	return linked.FormatTimestamp(timing)
}

// SetStatusFromString parses a user edit into the underlying raw event.
// ts is the already-parsed timestamp. Returns false if the edit could not
// be applied (out-of-range fields, unparseable text).
func (ee *EditableEvent) SetStatusFromString(ts miditime.Pulse, name string, d0, d1 int, channel int, text string) bool {
	switch ee.Category {
	case ChannelMessage:
		status, ok := ChannelTable.value(name)
		if !ok || channel < 0 || channel > 15 {
			return false
		}
		ee.Raw.Timestamp = ts
		if !ee.Raw.SetChannelStatus(status, midievent.Channel(channel)) {
			return false
		}
		ee.Raw.D0 = clamp7(d0)
		switch status {
		case midievent.StatusProgramChange, midievent.StatusChannelPressure:
			ee.Raw.D1 = 0
		default:
			ee.Raw.D1 = clamp7(d1)
		}
		return true
	case MetaEvent:
		kind, ok := MetaTable.value(name)
		if !ok {
			return false
		}
		switch kind {
		case midievent.MetaTempo:
			bpm, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if err != nil || bpm <= 0 {
				return false
			}
			ee.Raw.Timestamp = ts
			return ee.Raw.SetTempo(bpm)
		case midievent.MetaTimeSig:
			payload, ok := parseTimeSig(text)
			if !ok {
				return false
			}
			ee.Raw.Timestamp = ts
			ee.Raw.SetMeta(kind, payload)
			return true
		case midievent.MetaText, midievent.MetaLyric, midievent.MetaMarker,
			midievent.MetaCuePoint, midievent.MetaTrackName, midievent.MetaCopyright,
			midievent.MetaInstrument:
			ee.Raw.Timestamp = ts
			ee.Raw.SetMeta(kind, []byte(text))
			return true
		default:
			return false
		}
	case SeqSpecEvent:
		tag, ok := seqSpecTag(name)
		if !ok {
			return false
		}
		payload := []byte{byte(tag >> 24), byte(tag >> 16), byte(tag >> 8), byte(tag)}
		payload = append(payload, []byte(text)...)
		ee.Raw.Timestamp = ts
		ee.Raw.SetMeta(midievent.MetaSeqSpec, payload)
		return true
	default:
		return false
	}
}

func clamp7(v int) midievent.Data7 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return midievent.Data7(v)
}

// parseTimeSig parses "nn/dd" with optional " cc" and " bb" (cc hex or decimal).
func parseTimeSig(text string) ([]byte, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, false
	}
	ratio := strings.SplitN(fields[0], "/", 2)
	if len(ratio) != 2 {
		return nil, false
	}
	nn, err1 := strconv.Atoi(ratio[0])
	dd, err2 := strconv.Atoi(ratio[1])
	if err1 != nil || err2 != nil || nn <= 0 || dd <= 0 {
		return nil, false
	}
	ddPow := 0
	for v := dd; v > 1; v >>= 1 {
		ddPow++
	}
	cc := 24
	bb := 8
	if len(fields) > 1 {
		v, err := parseIntHexOrDec(fields[1])
		if err != nil {
			return nil, false
		}
		cc = v
	}
	if len(fields) > 2 {
		v, err := parseIntHexOrDec(fields[2])
		if err != nil {
			return nil, false
		}
		bb = v
	}
	return []byte{byte(nn), byte(ddPow), byte(cc), byte(bb)}, true
}

func parseIntHexOrDec(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 32)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

// Session mediates between a user's edits and a pattern's EventList. It
// holds a full backup for Cancel, per spec.md §3.3 ownership rules.
type Session struct {
	list     *eventlist.EventList
	rows     []*EditableEvent
	backup   []*midievent.Event
	dirty    bool
	tsFormat TimestampFormat
}

// NewSession borrows list and snapshots it for later Cancel.
func NewSession(list *eventlist.EventList, tsFormat TimestampFormat) *Session {
	s := &Session{list: list, tsFormat: tsFormat}
	s.InitializeTable()
	s.backup = cloneEvents(list.Events())
	return s
}

func cloneEvents(evs []*midievent.Event) []*midievent.Event {
	out := make([]*midievent.Event, len(evs))
	for i, e := range evs {
		out[i] = e.Clone()
	}
	return out
}

// InitializeTable loads all pattern events into the working rows.
func (s *Session) InitializeTable() {
	s.rows = s.rows[:0]
	for _, e := range s.list.Events() {
		s.rows = append(s.rows, New(e, s.tsFormat))
	}
}

func (s *Session) Rows() []*EditableEvent { return s.rows }
func (s *Session) IsDirty() bool          { return s.dirty }

// Insert adds a new row built from a raw event. Rejects non-editable meta
// types, per spec.md §9's resolution of that Open Question.
func (s *Session) Insert(e *midievent.Event) bool {
	if e.Status == midievent.StatusMeta && nonEditableMeta[midievent.MidiByte(e.Channel)] {
		return false
	}
	s.rows = append(s.rows, New(e, s.tsFormat))
	s.dirty = true
	return true
}

// Modify replaces the raw event behind row.
func (s *Session) Modify(row int, e *midievent.Event) bool {
	if row < 0 || row >= len(s.rows) {
		return false
	}
	s.rows[row].Raw = e
	s.rows[row].Category = categoryOf(e)
	s.dirty = true
	return true
}

// Delete removes a row.
func (s *Session) Delete(row int) bool {
	if row < 0 || row >= len(s.rows) {
		return false
	}
	s.rows = append(s.rows[:row], s.rows[row+1:]...)
	s.dirty = true
	return true
}

// Clear empties the working table.
func (s *Session) Clear() {
	s.rows = nil
	s.dirty = true
}

// Save commits the working rows by replacing the pattern's event list
// contents and re-verifying, per spec.md §4.5.
func (s *Session) Save(length miditime.Pulse, wrap bool) {
	newList := eventlist.New(length)
	for _, r := range s.rows {
		newList.Append(r.Raw)
	}
	*s.list = *newList
	s.list.VerifyAndLink(length, wrap)
	s.dirty = false
	s.backup = cloneEvents(s.list.Events())
	s.InitializeTable()
}

// Cancel restores the pattern's event list from the session's backup.
func (s *Session) Cancel() {
	*s.list = *eventlist.New(s.list.GetLength())
	for _, e := range cloneEvents(s.backup) {
		s.list.Append(e)
	}
	s.dirty = false
	s.InitializeTable()
}
