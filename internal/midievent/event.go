// Package midievent models one MIDI/system/meta event, with an optional
// sysex payload and a link to its note on/off mate.
package midievent

import (
	"math/rand"

	"gitlab.com/gomidi/midi/v2"

	"seqcore/internal/miditime"
)

// MidiByte is a value in 0..255.
type MidiByte uint16

// Data7 is a 7-bit MIDI data byte, 0..127.
type Data7 uint8

// Channel is 0..15, with sentinel NoChannel for "not a channel message".
type Channel uint16

const NoChannel Channel = 0x80

// Buss is 0..47, with sentinel NoBuss.
type Buss uint16

const NoBuss Buss = 0xFF

// Status byte values (channel voice high nibbles, and system/meta bytes).
const (
	StatusNoteOff         MidiByte = 0x80
	StatusNoteOn          MidiByte = 0x90
	StatusAftertouch      MidiByte = 0xA0
	StatusController      MidiByte = 0xB0
	StatusProgramChange   MidiByte = 0xC0
	StatusChannelPressure MidiByte = 0xD0
	StatusPitchWheel      MidiByte = 0xE0
	StatusSysex           MidiByte = 0xF0
	StatusSysexEnd        MidiByte = 0xF7
	StatusMeta            MidiByte = 0xFF
)

// Meta event type bytes, stored in Channel for meta events.
const (
	MetaSeqNumber    MidiByte = 0x00
	MetaText         MidiByte = 0x01
	MetaCopyright    MidiByte = 0x02
	MetaTrackName    MidiByte = 0x03
	MetaInstrument   MidiByte = 0x04
	MetaLyric        MidiByte = 0x05
	MetaMarker       MidiByte = 0x06
	MetaCuePoint     MidiByte = 0x07
	MetaChannelPfx   MidiByte = 0x20
	MetaTrackEnd     MidiByte = 0x2F
	MetaTempo        MidiByte = 0x51
	MetaSmpteOffset  MidiByte = 0x54
	MetaTimeSig      MidiByte = 0x58
	MetaKeySig       MidiByte = 0x59
	MetaSeqSpec      MidiByte = 0x7F
)

// Flags are per-event selection/marking bits.
type Flags struct {
	Selected bool
	Marked   bool
	Painted  bool
	Linked   bool
}

// Event is one MIDI/system/meta event.
type Event struct {
	Timestamp miditime.Pulse
	Status    MidiByte
	Channel   Channel
	D0        Data7
	D1        Data7
	Sysex     []byte
	Flags     Flags
	link      *Event
}

// rank groups Note Off before Note On at equal timestamps, per spec.md §3.2.
func rank(e *Event) int {
	if e.IsNoteOff() {
		return 0
	}
	return 1
}

// Less implements the (timestamp, rank) ordering used by EventList.Sort.
func Less(a, b *Event) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return rank(a) < rank(b)
}

// NewChannelVoice builds a channel voice event, enforcing the status/channel relationship.
func NewChannelVoice(ts miditime.Pulse, status MidiByte, channel Channel, d0, d1 Data7) *Event {
	e := &Event{Timestamp: ts, D0: d0, D1: d1}
	e.SetChannelStatus(status, channel)
	return e
}

// NewSystem builds a system-common/realtime event (no channel).
func NewSystem(ts miditime.Pulse, status MidiByte, d0, d1 Data7) *Event {
	return &Event{Timestamp: ts, Status: status, Channel: NoChannel, D0: d0, D1: d1}
}

// NewSysex builds a sysex event.
func NewSysex(ts miditime.Pulse, payload []byte) *Event {
	return &Event{Timestamp: ts, Status: StatusSysex, Channel: NoChannel, Sysex: append([]byte(nil), payload...)}
}

// NewMeta builds a meta event; kind is stored in Channel per spec.md §3.2.
func NewMeta(ts miditime.Pulse, kind MidiByte, payload []byte) *Event {
	e := &Event{Timestamp: ts, Status: StatusMeta}
	e.SetMeta(kind, payload)
	return e
}

// SetChannelStatus enforces the channel-vs-status relationship. Returns
// false (no change) if status is not a channel voice status.
func (e *Event) SetChannelStatus(status MidiByte, channel Channel) bool {
	if status < StatusNoteOff || status > StatusPitchWheel {
		return false
	}
	if channel > 15 {
		return false
	}
	e.Status = status & 0xF0
	e.Channel = channel
	return true
}

// SetTempo populates the sysex payload with the 3-byte tempo form.
func (e *Event) SetTempo(bpm float64) bool {
	if bpm <= 0 {
		return false
	}
	e.Status = StatusMeta
	e.Channel = Channel(MetaTempo)
	b := miditime.TempoBytes(bpm)
	e.Sysex = []byte{b[0], b[1], b[2]}
	return true
}

// SetMeta sets the meta type and payload.
func (e *Event) SetMeta(kind MidiByte, payload []byte) bool {
	e.Status = StatusMeta
	e.Channel = Channel(kind)
	e.Sysex = append([]byte(nil), payload...)
	return true
}

func (e *Event) IsNoteOn() bool {
	return e.Status == StatusNoteOn && e.D1 > 0
}

func (e *Event) IsNoteOff() bool {
	return e.Status == StatusNoteOff || (e.Status == StatusNoteOn && e.D1 == 0)
}

// IsLinkableOn/IsLinkableOff match the linking rules in eventlist.LinkNew.
func (e *Event) IsLinkableOn() bool { return e.IsNoteOn() }
func (e *Event) IsLinkableOff() bool {
	return e.Status == StatusNoteOff || (e.Status == StatusNoteOn && e.D1 == 0)
}

func (e *Event) IsTempo() bool {
	return e.Status == StatusMeta && MidiByte(e.Channel) == MetaTempo
}

func (e *Event) IsTimeSignature() bool {
	return e.Status == StatusMeta && MidiByte(e.Channel) == MetaTimeSig
}

func (e *Event) IsKeySignature() bool {
	return e.Status == StatusMeta && MidiByte(e.Channel) == MetaKeySig
}

func (e *Event) IsController() bool {
	return e.Status == StatusController
}

func (e *Event) IsMeta() bool {
	return e.Status == StatusMeta
}

// MatchStatus reports whether the event's status byte equals s (high nibble
// only, for channel voice statuses).
func (e *Event) MatchStatus(s MidiByte) bool {
	if s >= StatusNoteOff && s <= StatusPitchWheel {
		return e.Status == s&0xF0
	}
	return e.Status == s
}

// NoteNumber returns D0 for note on/off events (meaningless otherwise).
func (e *Event) NoteNumber() Data7 { return e.D0 }

// Velocity returns D1 for note events.
func (e *Event) Velocity() Data7 { return e.D1 }

// SetVelocity clamps to 7 bits.
func (e *Event) SetVelocity(v int) {
	e.D1 = clamp7(v)
}

// SetNoteNumber clamps to 7 bits.
func (e *Event) SetNoteNumber(n int) {
	e.D0 = clamp7(n)
}

func clamp7(v int) Data7 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return Data7(v)
}

// Link establishes a bidirectional link between e and other.
func (e *Event) Link(other *Event) {
	e.link = other
	other.link = e
	e.Flags.Linked = true
	other.Flags.Linked = true
}

// ClearLink clears the link on both sides.
func (e *Event) ClearLink() {
	if e.link != nil {
		e.link.link = nil
		e.link.Flags.Linked = false
	}
	e.link = nil
	e.Flags.Linked = false
}

// LinkedEvent returns the event's mate, or nil.
func (e *Event) LinkedEvent() *Event { return e.link }

func (e *Event) IsLinked() bool { return e.link != nil }

// Randomize nudges D1 (or D0 for non-note events) by a uniform random in
// [-rng, +rng], clamped to 7 bits. Returns true if altered.
func (e *Event) Randomize(rng int) bool {
	if rng <= 0 {
		return false
	}
	delta := rand.Intn(2*rng+1) - rng
	if delta == 0 {
		return false
	}
	if e.IsNoteOn() || e.IsNoteOff() {
		e.SetVelocity(int(e.D1) + delta)
	} else {
		e.D0 = clamp7(int(e.D0) + delta)
	}
	return true
}

// Tighten moves the timestamp halfway from where it is toward the nearest
// multiple of snap, rather than snapping to the grid outright. Returns true
// if altered.
func (e *Event) Tighten(snap miditime.Pulse, length miditime.Pulse) bool {
	if snap <= 0 {
		return false
	}
	target := miditime.Snap(miditime.SnapClosest, snap, e.Timestamp)
	newTs := e.Timestamp + (target-e.Timestamp)/2
	if length > 0 && newTs >= length {
		newTs = length - 1
	}
	if newTs == e.Timestamp {
		return false
	}
	e.Timestamp = newTs
	return true
}

// Quantize moves the timestamp to the nearest multiple of snap. Returns
// true if altered.
func (e *Event) Quantize(snap miditime.Pulse, length miditime.Pulse) bool {
	return e.snapTo(miditime.SnapClosest, snap, length)
}

func (e *Event) snapTo(kind miditime.SnapKind, unit miditime.Pulse, length miditime.Pulse) bool {
	if unit <= 0 {
		return false
	}
	newTs := miditime.Snap(kind, unit, e.Timestamp)
	if length > 0 && newTs >= length {
		newTs = length - 1
	}
	if newTs == e.Timestamp {
		return false
	}
	e.Timestamp = newTs
	return true
}

// Clone makes a deep, unlinked copy.
func (e *Event) Clone() *Event {
	c := *e
	c.link = nil
	c.Flags.Linked = false
	if e.Sysex != nil {
		c.Sysex = append([]byte(nil), e.Sysex...)
	}
	return &c
}

// Bytes encodes the event's channel-voice wire form using gomidi/midi/v2's
// message helpers. Non-channel-voice events return nil (callers serialize
// system/meta/sysex events through their own Sysex/Status fields; the
// core does not define a meta-event wire format writer, per spec.md §1).
func (e *Event) Bytes() []byte {
	ch := uint8(e.Channel)
	switch e.Status {
	case StatusNoteOn:
		return midi.NoteOn(ch, uint8(e.D0), uint8(e.D1))
	case StatusNoteOff:
		return midi.NoteOff(ch, uint8(e.D0))
	case StatusController:
		return midi.ControlChange(ch, uint8(e.D0), uint8(e.D1))
	case StatusProgramChange:
		return midi.ProgramChange(ch, uint8(e.D0))
	case StatusPitchWheel:
		return midi.Pitchbend(ch, int16(int(e.D1)<<7|int(e.D0)-8192))
	default:
		// Aftertouch/channel-pressure, system, meta, and sysex events carry
		// no core-defined wire writer; the file layer owns that encoding
		// (spec.md §6).
		return nil
	}
}

// FromBytes decodes a channel-voice message at the given timestamp.
func FromBytes(ts miditime.Pulse, msg midi.Message) (*Event, bool) {
	var ch, d0, d1 uint8
	switch {
	case msg.GetNoteOn(&ch, &d0, &d1):
		return NewChannelVoice(ts, StatusNoteOn, Channel(ch), Data7(d0), Data7(d1)), true
	case msg.GetNoteOff(&ch, &d0, &d1):
		return NewChannelVoice(ts, StatusNoteOff, Channel(ch), Data7(d0), Data7(d1)), true
	case msg.GetControlChange(&ch, &d0, &d1):
		return NewChannelVoice(ts, StatusController, Channel(ch), Data7(d0), Data7(d1)), true
	case msg.GetProgramChange(&ch, &d0):
		return NewChannelVoice(ts, StatusProgramChange, Channel(ch), Data7(d0), 0), true
	default:
		return nil, false
	}
}
