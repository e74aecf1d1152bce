// Package trigger implements the per-pattern song-mode trigger list:
// placement, split, move, copy/paste, undo/redo, and playback dispatch.
package trigger

import (
	"sort"

	"seqcore/internal/miditime"
)

// Direction for MoveTriggers.
type Direction int

const (
	Left Direction = iota
	Right
)

// SplitPoint selects where Split divides the covering trigger.
type SplitPoint int

const (
	SplitMiddle SplitPoint = iota
	SplitSnap
	SplitExact
)

// GrowWhich selects which end MoveSelected adjusts.
type GrowWhich int

const (
	GrowStart GrowWhich = iota
	GrowEnd
	Move
)

// EdgeKind classifies a PlaybackEdge.
type EdgeKind int

const (
	NoEdge EdgeKind = iota
	TriggerOn
	TriggerOff
	PlaybackStop
)

// PlaybackEdge is the result of one TriggerList.Play call.
type PlaybackEdge struct {
	Kind        EdgeKind
	PatternTick miditime.Pulse
	Offset      miditime.Pulse
}

// Trigger is a song-mode activation interval for one pattern.
type Trigger struct {
	Start     miditime.Pulse
	End       miditime.Pulse
	Offset    miditime.Pulse
	Transpose int8 // -63..+63
	Selected  bool
}

// Length returns End-Start+1; a valid trigger has Length >= 1.
func (t Trigger) Length() miditime.Pulse { return t.End - t.Start + 1 }

// TriggerList is the sorted, non-overlapping sequence of Triggers for one pattern.
type TriggerList struct {
	triggers []Trigger

	patternLength miditime.Pulse
	ppqn          int

	undoStack [][]Trigger
	redoStack [][]Trigger

	clipboard  []Trigger
	lastPasteAt miditime.Pulse
	havePasted  bool

	playing bool
}

// New creates an empty TriggerList for a pattern of the given length and ppqn.
func New(patternLength miditime.Pulse, ppqn int) *TriggerList {
	return &TriggerList{patternLength: patternLength, ppqn: ppqn}
}

func (tl *TriggerList) Count() int          { return len(tl.triggers) }
func (tl *TriggerList) Triggers() []Trigger { return tl.triggers }

// SelectedCount equals the number of triggers with Selected=true.
func (tl *TriggerList) SelectedCount() int {
	n := 0
	for _, t := range tl.triggers {
		if t.Selected {
			n++
		}
	}
	return n
}

func (tl *TriggerList) normalizeOffset(offset miditime.Pulse) miditime.Pulse {
	if tl.patternLength <= 0 {
		return 0
	}
	o := offset % tl.patternLength
	if o < 0 {
		o += tl.patternLength
	}
	return o
}

func (tl *TriggerList) sort() {
	sort.Slice(tl.triggers, func(i, j int) bool { return tl.triggers[i].Start < tl.triggers[j].Start })
}

// Add inserts a new trigger, trimming/erasing any overlapping neighbors
// per spec.md §4.4.
func (tl *TriggerList) Add(tick, length, offset miditime.Pulse, transpose int8) {
	newT := Trigger{Start: tick, End: tick + length - 1, Offset: tl.normalizeOffset(offset), Transpose: transpose}

	var kept []Trigger
	for _, t := range tl.triggers {
		switch {
		case t.Start >= newT.Start && t.End <= newT.End:
			// fully inside: delete
		case t.Start < newT.Start && t.End > newT.End:
			// contains the new trigger: keep the parts on either side
			right := t
			right.Start = newT.End + 1
			t.End = newT.Start - 1
			kept = append(kept, t, right)
		case t.End >= newT.Start && t.End <= newT.End:
			t.End = newT.Start - 1
			if t.End >= t.Start {
				kept = append(kept, t)
			}
		case t.Start >= newT.Start && t.Start <= newT.End:
			t.Start = newT.End + 1
			if t.Start <= t.End {
				kept = append(kept, t)
			}
		default:
			kept = append(kept, t)
		}
	}
	kept = append(kept, newT)
	tl.triggers = kept
	tl.sort()
}

// find returns the index of the trigger covering tick, or -1.
func (tl *TriggerList) find(tick miditime.Pulse) int {
	for i, t := range tl.triggers {
		if tick >= t.Start && tick <= t.End {
			return i
		}
	}
	return -1
}

// Intersect returns the containing trigger's range if position is inside one.
func (tl *TriggerList) Intersect(position miditime.Pulse) (start, end miditime.Pulse, ok bool) {
	i := tl.find(position)
	if i < 0 {
		return 0, 0, false
	}
	return tl.triggers[i].Start, tl.triggers[i].End, true
}

// Split divides the trigger covering tick at the point selected by kind.
func (tl *TriggerList) Split(tick miditime.Pulse, kind SplitPoint, snapUnit miditime.Pulse) bool {
	i := tl.find(tick)
	if i < 0 {
		return false
	}
	orig := tl.triggers[i]
	var splitAt miditime.Pulse
	switch kind {
	case SplitMiddle:
		splitAt = orig.Start + orig.Length()/2
	case SplitSnap:
		splitAt = miditime.Snap(miditime.SnapClosest, snapUnit, tick)
	default:
		splitAt = tick
	}
	if splitAt <= orig.Start || splitAt > orig.End {
		return false
	}
	left := orig
	left.End = splitAt - 1
	right := orig
	right.Start = splitAt
	tl.triggers[i] = left
	tl.triggers = append(tl.triggers, right)
	tl.sort()
	return true
}

// GrowTrigger finds the trigger covering from and extends it to cover
// [min(start,to), max(end,to+length-1)], trimming/erasing any neighbor the
// growth now overlaps (same rule Add applies) to preserve non-overlap.
func (tl *TriggerList) GrowTrigger(from, to, length miditime.Pulse) bool {
	i := tl.find(from)
	if i < 0 {
		return false
	}
	t := tl.triggers[i]
	if to < t.Start {
		t.Start = to
	}
	if to+length-1 > t.End {
		t.End = to + length - 1
	}

	var kept []Trigger
	for j, other := range tl.triggers {
		if j == i {
			continue
		}
		switch {
		case other.Start >= t.Start && other.End <= t.End:
		case other.End >= t.Start && other.End <= t.End:
			other.End = t.Start - 1
			if other.End >= other.Start {
				kept = append(kept, other)
			}
		case other.Start >= t.Start && other.Start <= t.End:
			other.Start = t.End + 1
			if other.Start <= other.End {
				kept = append(kept, other)
			}
		default:
			kept = append(kept, other)
		}
	}
	kept = append(kept, t)
	tl.triggers = kept
	tl.sort()
	return true
}

// MoveTriggers opens or closes a gap of distance pulses at start. Right:
// a trigger straddling start is split there, then every trigger with
// Start >= start moves forward by distance. Left: a trigger straddling
// start+distance is split there, triggers inside [start, start+distance)
// are deleted, a trigger straddling start is cut to end at start-1, and
// every trigger with Start >= start+distance moves back by distance.
func (tl *TriggerList) MoveTriggers(start, distance miditime.Pulse, direction Direction) {
	if direction == Right {
		if i := tl.find(start); i >= 0 && tl.triggers[i].Start < start {
			tl.Split(start, SplitExact, 0)
		}
		for i := range tl.triggers {
			if tl.triggers[i].Start >= start {
				tl.triggers[i].Start += distance
				tl.triggers[i].End += distance
				tl.triggers[i].Offset = tl.normalizeOffset(tl.triggers[i].Offset + distance)
			}
		}
		tl.sort()
		return
	}

	end := start + distance
	if i := tl.find(end); i >= 0 && tl.triggers[i].Start < end {
		tl.Split(end, SplitExact, 0)
	}
	var kept []Trigger
	for _, t := range tl.triggers {
		switch {
		case t.Start >= end:
			t.Start -= distance
			t.End -= distance
			kept = append(kept, t)
		case t.End < start:
			kept = append(kept, t)
		case t.Start >= start && t.End < end:
			// fully evacuated: delete
		case t.Start < start:
			// straddles start: drop the evacuated part
			t.End = start - 1
			kept = append(kept, t)
		default:
			kept = append(kept, t)
		}
	}
	tl.triggers = kept
	tl.sort()
}

// CopyTriggers duplicates the triggers in [start, start+distance) into
// [start+distance, start+2*distance).
func (tl *TriggerList) CopyTriggers(start, distance miditime.Pulse) {
	var dup []Trigger
	for _, t := range tl.triggers {
		if t.Start >= start && t.Start < start+distance {
			nt := t
			nt.Start += distance
			nt.End += distance
			nt.Offset = tl.normalizeOffset(t.Offset + distance)
			dup = append(dup, nt)
		}
	}
	tl.triggers = append(tl.triggers, dup...)
	tl.sort()
}

// MoveSelected grows/moves the selected trigger per spec.md §4.4.
func (tl *TriggerList) MoveSelected(tick miditime.Pulse, which GrowWhich) bool {
	i := -1
	for idx, t := range tl.triggers {
		if t.Selected {
			i = idx
			break
		}
	}
	if i < 0 {
		return false
	}
	t := tl.triggers[i]
	minLen := miditime.Pulse(tl.ppqn) / 8
	if minLen < 1 {
		minLen = 1
	}

	var lowBound, highBound miditime.Pulse = 0, miditime.MaxPulse
	if i > 0 {
		lowBound = tl.triggers[i-1].End + 1
	}
	if i < len(tl.triggers)-1 {
		highBound = tl.triggers[i+1].Start - 1
	}

	switch which {
	case GrowStart:
		newStart := tick
		if newStart < lowBound {
			newStart = lowBound
		}
		if newStart > t.End-minLen+1 {
			newStart = t.End - minLen + 1
		}
		t.Start = newStart
	case GrowEnd:
		newEnd := tick
		if newEnd > highBound {
			newEnd = highBound
		}
		if newEnd < t.Start+minLen-1 {
			newEnd = t.Start + minLen - 1
		}
		t.End = newEnd
	case Move:
		delta := tick - t.Start
		length := t.Length()
		newStart := t.Start + delta
		if newStart < lowBound {
			newStart = lowBound
		}
		if newStart+length-1 > highBound {
			newStart = highBound - length + 1
		}
		t.Start = newStart
		t.End = newStart + length - 1
	}
	tl.triggers[i] = t
	tl.sort()
	return true
}

// Play scans for the last transition within [tickStart, tickEnd] and
// reports an edge and the offset to apply to the pattern's local time.
func (tl *TriggerList) Play(tickStart, tickEnd miditime.Pulse, resumeNoteOns bool) PlaybackEdge {
	_ = resumeNoteOns
	var edge PlaybackEdge
	for _, t := range tl.triggers {
		if t.Start >= tickStart && t.Start <= tickEnd {
			edge = PlaybackEdge{Kind: TriggerOn, PatternTick: t.Start, Offset: t.Offset}
			tl.playing = true
		}
		if t.End >= tickStart && t.End <= tickEnd {
			edge = PlaybackEdge{Kind: TriggerOff, PatternTick: t.End}
			tl.playing = false
		}
	}
	if len(tl.triggers) == 0 && tl.playing {
		tl.playing = false
		return PlaybackEdge{Kind: PlaybackStop}
	}
	return edge
}

// --- selection ---

func (tl *TriggerList) SelectAll() {
	for i := range tl.triggers {
		tl.triggers[i].Selected = true
	}
}

func (tl *TriggerList) UnselectAll() {
	for i := range tl.triggers {
		tl.triggers[i].Selected = false
	}
}

func (tl *TriggerList) RemoveSelected() {
	var kept []Trigger
	for _, t := range tl.triggers {
		if !t.Selected {
			kept = append(kept, t)
		}
	}
	tl.triggers = kept
}

func (tl *TriggerList) CopySelected() {
	var clip []Trigger
	for _, t := range tl.triggers {
		if t.Selected {
			clip = append(clip, t)
		}
	}
	tl.clipboard = clip
	tl.havePasted = false
}

// Paste inserts the clipboard. If pasteTick is nil, the paste follows the
// last paste (chained); otherwise it begins at *pasteTick and resets the chain.
func (tl *TriggerList) Paste(pasteTick *miditime.Pulse) {
	if len(tl.clipboard) == 0 {
		return
	}
	origStart := tl.clipboard[0].Start
	span := tl.clipboard[len(tl.clipboard)-1].End - origStart + 1
	var at miditime.Pulse
	switch {
	case pasteTick != nil:
		at = *pasteTick
	case tl.havePasted:
		at = tl.lastPasteAt + span
	default:
		at = origStart + span
	}
	delta := at - origStart
	for _, t := range tl.clipboard {
		nt := t
		nt.Start += delta
		nt.End += delta
		nt.Selected = false
		tl.Add(nt.Start, nt.Length(), nt.Offset, nt.Transpose)
	}
	tl.lastPasteAt = at
	tl.havePasted = true
}

// --- undo/redo ---

// PushUndo snapshots the current trigger vector, per the teacher's
// UndoState/PushUndoState shape (internal/model/undo_test.go), adapted
// from "whole UI state" to "whole trigger vector".
func (tl *TriggerList) PushUndo() {
	tl.undoStack = append(tl.undoStack, cloneTriggers(tl.triggers))
	tl.redoStack = nil
}

func (tl *TriggerList) CanUndo() bool { return len(tl.undoStack) > 0 }
func (tl *TriggerList) CanRedo() bool { return len(tl.redoStack) > 0 }

// PopUndo restores the most recent snapshot, clearing selections in it to
// re-establish the selected-count invariant, per spec.md §8. A no-op if
// the stack is empty.
func (tl *TriggerList) PopUndo() {
	if len(tl.undoStack) == 0 {
		return
	}
	tl.redoStack = append(tl.redoStack, cloneTriggers(tl.triggers))
	n := len(tl.undoStack) - 1
	restored := tl.undoStack[n]
	tl.undoStack = tl.undoStack[:n]
	for i := range restored {
		restored[i].Selected = false
	}
	tl.triggers = restored
}

// PopRedo is the inverse of PopUndo.
func (tl *TriggerList) PopRedo() {
	if len(tl.redoStack) == 0 {
		return
	}
	tl.undoStack = append(tl.undoStack, cloneTriggers(tl.triggers))
	n := len(tl.redoStack) - 1
	restored := tl.redoStack[n]
	tl.redoStack = tl.redoStack[:n]
	for i := range restored {
		restored[i].Selected = false
	}
	tl.triggers = restored
}

func cloneTriggers(ts []Trigger) []Trigger {
	out := make([]Trigger, len(ts))
	copy(out, ts)
	return out
}

// Rescale multiplies Start, End, and Offset by newPpqn/oldPpqn.
func (tl *TriggerList) Rescale(oldPpqn, newPpqn int) {
	for i := range tl.triggers {
		tl.triggers[i].Start = miditime.RescaleTick(tl.triggers[i].Start, newPpqn, oldPpqn)
		tl.triggers[i].End = miditime.RescaleTick(tl.triggers[i].End, newPpqn, oldPpqn)
		tl.triggers[i].Offset = miditime.RescaleTick(tl.triggers[i].Offset, newPpqn, oldPpqn)
	}
	tl.ppqn = newPpqn
}

// NoOverlap reports whether the list currently satisfies the non-overlap
// invariant (exported for tests exercising the invariant directly).
func (tl *TriggerList) NoOverlap() bool {
	for i := 1; i < len(tl.triggers); i++ {
		if tl.triggers[i].Start <= tl.triggers[i-1].End {
			return false
		}
	}
	return true
}
