// Package eventlist implements the sorted, linked container of Events that
// belongs to one pattern: insertion, sort, link, verify, and the editing
// transforms (quantize, jitter, randomize, reverse, align, scale, grow,
// clipboard).
package eventlist

import (
	"math/rand"
	"sort"

	"seqcore/internal/midievent"
	"seqcore/internal/miditime"
	"seqcore/internal/scales"
)

// SelectAction mirrors spec.md §4.3's selection action enum.
type SelectAction int

const (
	Selecting SelectAction = iota
	SelectOne
	Selected
	WouldSelect
	Deselect
	Toggle
	Remove
	Onset
	IsOnset
)

// TickRange is an inclusive [Start, End] pulse range.
type TickRange struct {
	Start miditime.Pulse
	End   miditime.Pulse
}

func (r TickRange) contains(p miditime.Pulse) bool {
	return p >= r.Start && p <= r.End
}

// NoteRange is an inclusive [Low, High] note-number range.
type NoteRange struct {
	Low  midievent.Data7
	High midievent.Data7
}

func (r NoteRange) contains(n midievent.Data7) bool {
	return n >= r.Low && n <= r.High
}

// DefaultZeroLenCorrection is seq66's hard-coded constant, exposed here as
// a settable field per spec.md §9's Open Question resolution.
const DefaultZeroLenCorrection = miditime.Pulse(16)

// NoteOffMargin is the gap kept between a Note Off and the pattern length
// by ScaleTime (when preserveNoteLength is true) and by GrowSelected.
// ScaleTime with preserveNoteLength false does not apply it.
const NoteOffMargin = miditime.Pulse(1)

// EventList is the sorted container of Events for one pattern.
type EventList struct {
	events             []*midievent.Event
	length             miditime.Pulse
	modified           bool
	hasTempo           bool
	hasTimeSignature   bool
	hasKeySignature    bool
	ZeroLenCorrection  miditime.Pulse
}

// New creates an empty EventList with the given pattern length in pulses.
func New(length miditime.Pulse) *EventList {
	return &EventList{length: length, ZeroLenCorrection: DefaultZeroLenCorrection}
}

// GetLength returns the pattern length bound.
func (el *EventList) GetLength() miditime.Pulse { return el.length }

// SetLength updates the pattern length bound.
func (el *EventList) SetLength(l miditime.Pulse) { el.length = l }

// Count returns the number of events.
func (el *EventList) Count() int { return len(el.events) }

// Events returns the events in their current (sort) order. Callers must
// not mutate the returned slice's backing array length.
func (el *EventList) Events() []*midievent.Event { return el.events }

func (el *EventList) IsModified() bool { return el.modified }
func (el *EventList) ClearModified()   { el.modified = false }

func (el *EventList) HasTempo() bool         { return el.hasTempo }
func (el *EventList) HasTimeSignature() bool { return el.hasTimeSignature }
func (el *EventList) HasKeySignature() bool  { return el.hasKeySignature }

// Append adds an event without maintaining sort order (fast path for bulk load).
func (el *EventList) Append(e *midievent.Event) {
	el.events = append(el.events, e)
	el.noteFlags(e)
	el.modified = true
}

// Add inserts an event, keeping the list sorted.
func (el *EventList) Add(e *midievent.Event) {
	i := sort.Search(len(el.events), func(i int) bool {
		return midievent.Less(e, el.events[i])
	})
	el.events = append(el.events, nil)
	copy(el.events[i+1:], el.events[i:])
	el.events[i] = e
	el.noteFlags(e)
	el.modified = true
}

func (el *EventList) noteFlags(e *midievent.Event) {
	if e.IsTempo() {
		el.hasTempo = true
	}
	if e.IsTimeSignature() {
		el.hasTimeSignature = true
	}
	if e.IsKeySignature() {
		el.hasKeySignature = true
	}
}

// Sort establishes the (timestamp, rank) ordering, preserving relative
// insertion order for ties (stable sort).
func (el *EventList) Sort() {
	sort.SliceStable(el.events, func(i, j int) bool {
		return midievent.Less(el.events[i], el.events[j])
	})
}

// Remove deletes the event at index i.
func (el *EventList) Remove(i int) {
	if i < 0 || i >= len(el.events) {
		return
	}
	el.events = append(el.events[:i], el.events[i+1:]...)
	el.modified = true
}

// LinkNew links each unlinked Note On to the first matching Note Off (same
// channel, same note) scanning forward, continuing from the start of the
// list if none is found. If wrap is false, a Note Off found by that
// wrapped scan is moved to length-1. A zero-length pair is corrected by
// pushing the Note Off forward by ZeroLenCorrection.
func (el *EventList) LinkNew(wrap bool) {
	n := len(el.events)
	for i := 0; i < n; i++ {
		on := el.events[i]
		if !on.IsLinkableOn() || on.IsLinked() {
			continue
		}
		off, foundAt, wrapped := el.findMatchingOff(i, n)
		if off == nil {
			continue
		}
		on.Link(off)
		if wrapped && !wrap {
			off.Timestamp = el.length - 1
		}
		if off.Timestamp == on.Timestamp {
			off.Timestamp += el.ZeroLenCorrection
		}
		_ = foundAt
	}
}

func (el *EventList) findMatchingOff(start, n int) (off *midievent.Event, idx int, wrapped bool) {
	on := el.events[start]
	for i := start + 1; i < n; i++ {
		e := el.events[i]
		if e.IsLinkableOff() && !e.IsLinked() && e.Channel == on.Channel && e.D0 == on.D0 {
			return e, i, false
		}
	}
	for i := 0; i < start; i++ {
		e := el.events[i]
		if e.IsLinkableOff() && !e.IsLinked() && e.Channel == on.Channel && e.D0 == on.D0 {
			return e, i, true
		}
	}
	return nil, -1, false
}

// VerifyAndLink restores all invariants: clear links, sort, link, and (if
// length > 0) mark and remove any event outside [0, length]. Linking
// always happens before pruning, per spec.md §9.
func (el *EventList) VerifyAndLink(length miditime.Pulse, wrap bool) {
	el.length = length
	el.clearAllLinks()
	el.Sort()
	el.LinkNew(wrap)
	if length > 0 {
		el.pruneOutOfRange(length)
	}
}

func (el *EventList) clearAllLinks() {
	for _, e := range el.events {
		e.ClearLink()
	}
}

// pruneOutOfRange marks every event with timestamp outside [0, length] and,
// for a linked event, its mate as well, then removes everything marked —
// an in-range Note On is dropped along with an out-of-range Note Off it was
// linked to, not left behind orphaned.
func (el *EventList) pruneOutOfRange(length miditime.Pulse) {
	marked := make(map[*midievent.Event]bool, len(el.events))
	for _, e := range el.events {
		if e.Timestamp < 0 || e.Timestamp > length {
			marked[e] = true
			if e.IsLinked() {
				marked[e.LinkedEvent()] = true
			}
		}
	}
	kept := el.events[:0]
	for _, e := range el.events {
		if marked[e] {
			e.ClearLink()
			continue
		}
		kept = append(kept, e)
	}
	el.events = kept
}

// RemoveTrailingEvents shortens a linked Note On so its Note Off ends at
// limit-1, if the Note Off is past limit.
func (el *EventList) RemoveTrailingEvents(limit miditime.Pulse) {
	for _, e := range el.events {
		if !e.IsNoteOn() || !e.IsLinked() {
			continue
		}
		off := e.LinkedEvent()
		if off.Timestamp >= limit {
			off.Timestamp = limit - 1
			el.modified = true
		}
	}
}

// --- selection model ---

func (el *EventList) MarkSelected() {
	for _, e := range el.events {
		if e.Flags.Selected {
			e.Flags.Marked = true
		}
	}
}

func (el *EventList) UnmarkAll() {
	for _, e := range el.events {
		e.Flags.Marked = false
	}
}

func (el *EventList) SelectAll() {
	for _, e := range el.events {
		e.Flags.Selected = true
	}
}

func (el *EventList) UnselectAll() {
	for _, e := range el.events {
		e.Flags.Selected = false
	}
}

// SelectEvents applies action to events within tick, matching status (and cc
// data byte if status is a controller and cc >= 0). Returns the number of
// events touched.
func (el *EventList) SelectEvents(tick TickRange, status midievent.MidiByte, cc int, action SelectAction) int {
	count := 0
	for _, e := range el.events {
		if !tick.contains(e.Timestamp) || !e.MatchStatus(status) {
			continue
		}
		if status == midievent.StatusController && cc >= 0 && int(e.D0) != cc {
			continue
		}
		if applySelectAction(e, action) {
			count++
		}
	}
	return count
}

// SelectNoteEvents is SelectEvents restricted to note events within noteRange.
func (el *EventList) SelectNoteEvents(tick TickRange, noteRange NoteRange, action SelectAction) int {
	count := 0
	for _, e := range el.events {
		if !(e.IsNoteOn() || e.IsNoteOff()) {
			continue
		}
		if !tick.contains(e.Timestamp) || !noteRange.contains(e.D0) {
			continue
		}
		if applySelectAction(e, action) {
			count++
		}
	}
	return count
}

func applySelectAction(e *midievent.Event, action SelectAction) bool {
	switch action {
	case Selecting, SelectOne:
		e.Flags.Selected = true
		return true
	case Selected, IsOnset:
		return e.Flags.Selected
	case WouldSelect, Onset:
		return true
	case Deselect:
		e.Flags.Selected = false
		return true
	case Toggle:
		e.Flags.Selected = !e.Flags.Selected
		return true
	case Remove:
		return e.Flags.Selected
	}
	return false
}

func (el *EventList) selectedOrAll(status midievent.MidiByte, onlySelected bool) []*midievent.Event {
	var out []*midievent.Event
	for _, e := range el.events {
		if status != 0 && !e.MatchStatus(status) {
			continue
		}
		if onlySelected && !e.Flags.Selected {
			continue
		}
		out = append(out, e)
	}
	return out
}

// --- transforms ---

// Quantize moves matching timestamps to the nearest multiple of snap;
// linked Note Offs move in lock-step unless that collapses the note, in
// which case the Off is pushed forward by snap/2. Returns true if any
// event changed.
func (el *EventList) Quantize(snap miditime.Pulse, status midievent.MidiByte, onlySelected bool) bool {
	return el.snapTransform(snap, status, onlySelected, false)
}

// Tighten is Quantize, except that each event moves only half the distance
// toward its grid point.
func (el *EventList) Tighten(snap miditime.Pulse, status midievent.MidiByte, onlySelected bool) bool {
	return el.snapTransform(snap, status, onlySelected, true)
}

// snapped computes the target timestamp for one event: a straight snap to
// the grid for Quantize, or half the distance to that grid point for
// Tighten (see midievent.Event.Tighten).
func snapped(orig, snap miditime.Pulse, tighten bool) miditime.Pulse {
	target := miditime.Snap(miditime.SnapClosest, snap, orig)
	if !tighten {
		return target
	}
	return orig + (target-orig)/2
}

func (el *EventList) snapTransform(snap miditime.Pulse, status midievent.MidiByte, onlySelected, tighten bool) bool {
	if snap <= 0 {
		return false
	}
	changed := false
	seen := map[*midievent.Event]bool{}
	for _, e := range el.selectedOrAll(status, onlySelected) {
		if seen[e] {
			continue
		}
		seen[e] = true
		orig := e.Timestamp
		newTs := snapped(orig, snap, tighten)
		if newTs == orig {
			continue
		}
		e.Timestamp = newTs
		changed = true
		if e.IsNoteOn() && e.IsLinked() {
			off := e.LinkedEvent()
			seen[off] = true
			if off.Timestamp > newTs {
				offNew := snapped(off.Timestamp, snap, tighten)
				if offNew <= newTs {
					offNew = newTs + snap/2
				}
				off.Timestamp = offNew
			}
		}
	}
	if changed {
		el.Sort()
		el.modified = true
	}
	return changed
}

// Jitter offsets matching timestamps by a uniform random in [-jit, +jit],
// clamped to [0, length). Notes move as pairs.
func (el *EventList) Jitter(jit miditime.Pulse, status midievent.MidiByte, onlySelected bool) bool {
	if jit <= 0 {
		return false
	}
	changed := false
	seen := map[*midievent.Event]bool{}
	for _, e := range el.selectedOrAll(status, onlySelected) {
		if seen[e] || (e.IsNoteOff() && e.IsLinked()) {
			// Note Offs move with their On below.
			continue
		}
		seen[e] = true
		delta := miditime.Pulse(rand.Int63n(int64(2*jit+1)) - int64(jit))
		if delta == 0 {
			continue
		}
		el.shiftClamped(e, delta)
		changed = true
		if e.IsNoteOn() && e.IsLinked() {
			off := e.LinkedEvent()
			seen[off] = true
			el.shiftClamped(off, delta)
		}
	}
	if changed {
		el.Sort()
		el.modified = true
	}
	return changed
}

func (el *EventList) shiftClamped(e *midievent.Event, delta miditime.Pulse) {
	ts := e.Timestamp + delta
	if ts < 0 {
		ts = 0
	}
	if el.length > 0 && ts >= el.length {
		ts = el.length - 1
	}
	e.Timestamp = ts
}

// RandomizeVelocity nudges matching note velocities by [-rng, +rng], clamped
// to 7 bits.
func (el *EventList) RandomizeVelocity(rng int, onlySelected bool) bool {
	changed := false
	for _, e := range el.selectedOrAll(midievent.StatusNoteOn, onlySelected) {
		if e.Randomize(rng) {
			changed = true
		}
	}
	if changed {
		el.modified = true
	}
	return changed
}

// RandomizePitch nudges matching note numbers by [-rng, +rng]; if scale is
// not scales.Off, the pitch walks outward by +-1 until it lands on a scale
// degree of key.
func (el *EventList) RandomizePitch(rng int, key int, scale scales.Scale, onlySelected bool) bool {
	if rng <= 0 {
		return false
	}
	changed := false
	for _, e := range el.selectedOrAll(midievent.StatusNoteOn, onlySelected) {
		delta := rand.Intn(2*rng+1) - rng
		if delta == 0 {
			continue
		}
		n := int(e.D0) + delta
		if scale != scales.Off {
			n = walkToScale(n, key, scale)
		}
		e.SetNoteNumber(n)
		changed = true
	}
	if changed {
		el.modified = true
	}
	return changed
}

func walkToScale(n, key int, scale scales.Scale) int {
	for i := 0; i < 12; i++ {
		if scales.Policy(scale, key, n) {
			return n
		}
		n++
		if scales.Policy(scale, key, n) {
			return n
		}
		n -= 2
	}
	return n + 1
}

// ReverseEvents mirrors timestamps around [minTs, maxTs] (inPlace) or
// [0, length-1] (full). Linked Note Ons reposition to keep duration.
func (el *EventList) ReverseEvents(inPlace bool) bool {
	if len(el.events) == 0 {
		return false
	}
	var lo, hi miditime.Pulse
	if inPlace {
		lo, hi = el.events[0].Timestamp, el.events[0].Timestamp
		for _, e := range el.events {
			if e.Timestamp < lo {
				lo = e.Timestamp
			}
			if e.Timestamp > hi {
				hi = e.Timestamp
			}
		}
	} else {
		lo, hi = 0, el.length-1
	}
	mirror := func(ts miditime.Pulse) miditime.Pulse { return lo + hi - ts }

	for _, e := range el.events {
		if e.IsNoteOn() && e.IsLinked() {
			off := e.LinkedEvent()
			newOnTs := mirror(off.Timestamp)
			newOffTs := mirror(e.Timestamp)
			e.Timestamp = newOnTs
			off.Timestamp = newOffTs
		} else if !(e.IsNoteOff() && e.IsLinked()) {
			e.Timestamp = mirror(e.Timestamp)
		}
	}
	el.Sort()
	el.modified = true
	return true
}

// AlignLeft shifts all events so the earliest is at tick 0.
func (el *EventList) AlignLeft() bool {
	if len(el.events) == 0 {
		return true
	}
	minTs := el.events[0].Timestamp
	for _, e := range el.events {
		if e.Timestamp < minTs {
			minTs = e.Timestamp
		}
	}
	return el.shiftAll(-minTs)
}

// AlignRight shifts all events so the last ends at length-1.
func (el *EventList) AlignRight() bool {
	if len(el.events) == 0 || el.length <= 0 {
		return true
	}
	maxTs := el.events[0].Timestamp
	for _, e := range el.events {
		if e.Timestamp > maxTs {
			maxTs = e.Timestamp
		}
	}
	return el.shiftAll(el.length - 1 - maxTs)
}

func (el *EventList) shiftAll(delta miditime.Pulse) bool {
	for _, e := range el.events {
		ts := e.Timestamp + delta
		if ts < 0 || (el.length > 0 && ts > el.length) {
			return false
		}
	}
	for _, e := range el.events {
		e.Timestamp += delta
	}
	el.Sort()
	el.modified = true
	return true
}

// ScaleTime multiplies all timestamps by factor. If preserveNoteLength,
// each note's duration is held constant (computed from a pre-scale
// snapshot, since scaling a Note On's timestamp in place would otherwise
// destroy the duration its Note Off needs); otherwise Note Offs scale
// along with everything else.
func (el *EventList) ScaleTime(factor float64, preserveNoteLength bool) bool {
	if factor <= 0 {
		return false
	}
	type duration struct {
		on, off *midievent.Event
		length  miditime.Pulse
	}
	var durations []duration
	if preserveNoteLength {
		for _, e := range el.events {
			if e.IsNoteOn() && e.IsLinked() {
				durations = append(durations, duration{e, e.LinkedEvent(), e.LinkedEvent().Timestamp - e.Timestamp})
			}
		}
	}
	for _, e := range el.events {
		e.Timestamp = miditime.Pulse(float64(e.Timestamp) * factor)
	}
	for _, d := range durations {
		off := d.on.Timestamp + d.length
		if el.length > 0 && off > el.length-NoteOffMargin {
			off = el.length - NoteOffMargin
		}
		d.off.Timestamp = off
	}
	el.Sort()
	el.modified = true
	return true
}

// EdgeFix moves to tick 0 any selected Note On in the last snap/2 of the
// pattern whose Note Off has wrapped, extending the Note Off to keep the
// note's duration.
func (el *EventList) EdgeFix(snap miditime.Pulse) bool {
	if snap <= 0 || el.length <= 0 {
		return false
	}
	edge := el.length - snap/2
	changed := false
	for _, e := range el.events {
		if !e.Flags.Selected || !e.IsNoteOn() || !e.IsLinked() {
			continue
		}
		off := e.LinkedEvent()
		if e.Timestamp >= edge && off.Timestamp < e.Timestamp {
			dur := el.length - e.Timestamp + off.Timestamp
			e.Timestamp = 0
			off.Timestamp = dur
			changed = true
		}
	}
	if changed {
		el.Sort()
		el.modified = true
	}
	return changed
}

// CopySelected slides all selected events so the earliest is at tick 0 and
// returns the copy.
func (el *EventList) CopySelected() []*midievent.Event {
	var sel []*midievent.Event
	for _, e := range el.events {
		if e.Flags.Selected {
			sel = append(sel, e.Clone())
		}
	}
	if len(sel) == 0 {
		return nil
	}
	minTs := sel[0].Timestamp
	for _, e := range sel {
		if e.Timestamp < minTs {
			minTs = e.Timestamp
		}
	}
	for _, e := range sel {
		e.Timestamp -= minTs
	}
	relinkClipboard(sel)
	return sel
}

// relinkClipboard rebuilds Note On/Off links within a detached clone slice
// by matching (channel, note) pairs in order, since Clone() drops links.
func relinkClipboard(evs []*midievent.Event) {
	used := make([]bool, len(evs))
	for i, e := range evs {
		if used[i] || !e.IsNoteOn() {
			continue
		}
		for j := i + 1; j < len(evs); j++ {
			if used[j] {
				continue
			}
			o := evs[j]
			if o.IsNoteOff() && o.Channel == e.Channel && o.D0 == e.D0 {
				e.Link(o)
				used[j] = true
				break
			}
		}
	}
}

// PasteSelected inserts a clipboard snapshot offset to tick, shifting note
// numbers so the highest becomes note.
func (el *EventList) PasteSelected(clip []*midievent.Event, tick miditime.Pulse, note midievent.Data7) {
	if len(clip) == 0 {
		return
	}
	highest := clip[0].D0
	for _, e := range clip {
		if (e.IsNoteOn() || e.IsNoteOff()) && e.D0 > highest {
			highest = e.D0
		}
	}
	shift := int(note) - int(highest)
	pasted := make([]*midievent.Event, len(clip))
	for i, e := range clip {
		c := e.Clone()
		c.Timestamp += tick
		if c.IsNoteOn() || c.IsNoteOff() {
			c.SetNoteNumber(int(c.D0) + shift)
		}
		pasted[i] = c
	}
	relinkClipboard(pasted)
	for _, c := range pasted {
		el.Add(c)
	}
}

// StretchSelected linearly rescales the selected timestamp range by
// (old+delta)/old.
func (el *EventList) StretchSelected(delta miditime.Pulse) bool {
	var sel []*midievent.Event
	for _, e := range el.events {
		if e.Flags.Selected {
			sel = append(sel, e)
		}
	}
	if len(sel) < 2 {
		return false
	}
	minTs, maxTs := sel[0].Timestamp, sel[0].Timestamp
	for _, e := range sel {
		if e.Timestamp < minTs {
			minTs = e.Timestamp
		}
		if e.Timestamp > maxTs {
			maxTs = e.Timestamp
		}
	}
	old := maxTs - minTs
	if old <= 0 {
		return false
	}
	factor := float64(old+delta) / float64(old)
	for _, e := range sel {
		rel := float64(e.Timestamp - minTs)
		e.Timestamp = minTs + miditime.Pulse(rel*factor)
	}
	el.Sort()
	el.modified = true
	return true
}

// GrowSelected moves the Note Off of each selected Note On by delta,
// clipped to [on+snap-margin, length-margin].
func (el *EventList) GrowSelected(delta miditime.Pulse, snap miditime.Pulse) bool {
	changed := false
	for _, e := range el.events {
		if !e.Flags.Selected || !e.IsNoteOn() || !e.IsLinked() {
			continue
		}
		off := e.LinkedEvent()
		newTs := off.Timestamp + delta
		minTs := e.Timestamp + snap - NoteOffMargin
		maxTs := el.length - NoteOffMargin
		if newTs < minTs {
			newTs = minTs
		}
		if el.length > 0 && newTs > maxTs {
			newTs = maxTs
		}
		if newTs != off.Timestamp {
			off.Timestamp = newTs
			changed = true
		}
	}
	if changed {
		el.Sort()
		el.modified = true
	}
	return changed
}
