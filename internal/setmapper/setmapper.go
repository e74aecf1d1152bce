// Package setmapper implements SetMapper, spec.md §4.8/§3.2: the
// aggregator that binds a SetMaster and a MuteGroups table together with
// per-pattern state to compose the whole playable world, and tracks the
// current play-screen.
package setmapper

import (
	"seqcore/internal/miditime"
	"seqcore/internal/mutegroup"
	"seqcore/internal/pattern"
	"seqcore/internal/screenset"
	"seqcore/internal/setmaster"
	"seqcore/internal/trigger"
)

// SetMapper borrows a SetMaster and a MuteGroups and composes them into
// the single aggregate the playback loop and UI read from, mirroring the
// teacher's single top-level Model idiom (internal/model.Model).
type SetMapper struct {
	master  *setmaster.SetMaster
	mutes   *mutegroup.MuteGroups
	setSize int
	maxSets int

	playscreen    screenset.Number
	playMuteState []bool // snapshot of the play-screen's armed mask

	sequenceCount int
	sequenceHigh  pattern.Number
	editSequence  pattern.Number
}

// New binds master and mutes; setSize is rows*cols patterns per set.
func New(master *setmaster.SetMaster, mutes *mutegroup.MuteGroups, setSize, maxSets int) *SetMapper {
	return &SetMapper{
		master:       master,
		mutes:        mutes,
		setSize:      setSize,
		maxSets:      maxSets,
		editSequence: pattern.Unassigned,
	}
}

func (sm *SetMapper) Playscreen() screenset.Number { return sm.playscreen }
func (sm *SetMapper) SequenceCount() int           { return sm.sequenceCount }
func (sm *SetMapper) SequenceHigh() pattern.Number { return sm.sequenceHigh }
func (sm *SetMapper) EditSequence() pattern.Number { return sm.editSequence }
func (sm *SetMapper) SetEditSequence(n pattern.Number) { sm.editSequence = n }

// Master and Mutes expose the bound collaborators read-only, for callers
// (e.g. a monitor view) that need to walk the grid without mutating it.
func (sm *SetMapper) Master() *setmaster.SetMaster  { return sm.master }
func (sm *SetMapper) Mutes() *mutegroup.MuteGroups  { return sm.mutes }
func (sm *SetMapper) MaxSets() int                  { return sm.maxSets }
func (sm *SetMapper) SetSize() int                  { return sm.setSize }

// SeqSet returns the set number and in-set slot offset for a pattern number.
func (sm *SetMapper) SeqSet(patternNo pattern.Number) (set screenset.Number, offset int) {
	n := int(patternNo)
	return screenset.Number(n / sm.setSize), n % sm.setSize
}

// InstallSequence places p into the set/slot its Number addresses,
// creating the set lazily if it's inside [0, maxSets). If the exact slot
// is occupied, later slots of the same set are tried in order; fails if
// none of them is free. The pattern's Number is not changed when it lands
// in a later slot.
func (sm *SetMapper) InstallSequence(p *pattern.Pattern) bool {
	setNo, offset := sm.SeqSet(p.Number)
	if int(setNo) >= sm.maxSets {
		return false
	}
	s := sm.master.Set(setNo)
	if s == nil {
		s = sm.master.AddSet(setNo)
	}
	slot := s.FirstFreeSlotFrom(offset)
	if slot < 0 {
		return false
	}
	if !s.Insert(slot, p) {
		return false
	}
	sm.sequenceCount++
	if p.Number >= sm.sequenceHigh {
		sm.sequenceHigh = p.Number + 1
	}
	return true
}

// SetPlayscreen marks n as the play-screen, unmarking whatever was
// previously marked. An invalid (absent) n falls back to set 0.
func (sm *SetMapper) SetPlayscreen(n screenset.Number) {
	if prev := sm.master.Set(sm.playscreen); prev != nil {
		prev.SetPlayscreen(false)
	}
	target := sm.master.Set(n)
	if target == nil {
		n = 0
		target = sm.master.Set(0)
		if target == nil {
			target = sm.master.AddSet(0)
		}
	}
	target.SetPlayscreen(true)
	sm.playscreen = n
	sm.snapshotPlayMuteState(target)
}

func (sm *SetMapper) snapshotPlayMuteState(s *screenset.Screenset) {
	sm.playMuteState = make([]bool, s.Capacity())
	s.ForEach(func(slot int, p *pattern.Pattern) {
		sm.playMuteState[slot] = p.Armed
	})
}

// Play dispatches tick_start..tick_end to every unmuted pattern in the
// current play-screen only (spec.md §4.8's default, non-play-all-sets mode).
func (sm *SetMapper) Play(tickStart, tickEnd miditime.Pulse, resumeNoteOns bool) []trigger.PlaybackEdge {
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return nil
	}
	var edges []trigger.PlaybackEdge
	s.ForEach(func(slot int, p *pattern.Pattern) {
		if p.Muted {
			return
		}
		edge := p.Trigger.Play(tickStart, tickEnd, resumeNoteOns)
		if edge.Kind != trigger.NoEdge {
			edges = append(edges, edge)
		}
	})
	return edges
}

// armedBits returns the current play-screen's per-slot armed mask, live
// (not the snapshot taken at SetPlayscreen time), sized to its capacity.
func (sm *SetMapper) armedBits(s *screenset.Screenset) []bool {
	bits := make([]bool, s.Capacity())
	s.ForEach(func(slot int, p *pattern.Pattern) {
		bits[slot] = p.Armed
	})
	return bits
}

func (sm *SetMapper) pushBits(s *screenset.Screenset, bits []bool) {
	s.ForEach(func(slot int, p *pattern.Pattern) {
		if slot < len(bits) {
			p.Armed = bits[slot]
		}
	})
}

// ApplyMutes delegates to MuteGroups.Apply, then pushes the resulting
// bit-mask through the current play-screen.
func (sm *SetMapper) ApplyMutes(g mutegroup.GroupNumber) bool {
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return false
	}
	bits := make([]bool, s.Capacity())
	if !sm.mutes.Apply(g, bits) {
		return false
	}
	sm.pushBits(s, bits)
	return true
}

// UnapplyMutes delegates to MuteGroups.Unapply, pushing the zeroed mask
// through the play-screen.
func (sm *SetMapper) UnapplyMutes(g mutegroup.GroupNumber) {
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return
	}
	bits := make([]bool, s.Capacity())
	sm.mutes.Unapply(g, bits)
	sm.pushBits(s, bits)
}

// ToggleMutes delegates to MuteGroups.Toggle, pushing the result through
// the play-screen.
func (sm *SetMapper) ToggleMutes(g mutegroup.GroupNumber) {
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return
	}
	bits := sm.armedBits(s)
	sm.mutes.Toggle(g, bits)
	sm.pushBits(s, bits)
}

// ToggleActiveMutes delegates to MuteGroups.ToggleActive, pushing the
// result through the play-screen without disturbing user-armed extras.
func (sm *SetMapper) ToggleActiveMutes(g mutegroup.GroupNumber) {
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return
	}
	bits := sm.armedBits(s)
	bits = sm.mutes.ToggleActive(g, bits)
	sm.pushBits(s, bits)
}

// LearnMutes, when learnMode is true, snapshots the play-screen's armed
// mask into group g and marks it selected (spec.md §4.8).
func (sm *SetMapper) LearnMutes(learnMode bool, g mutegroup.GroupNumber, name string) bool {
	if !learnMode {
		return false
	}
	s := sm.master.Set(sm.playscreen)
	if s == nil {
		return false
	}
	bits := sm.armedBits(s)
	return sm.mutes.LearnMutes(g, bits, name)
}

// MuteGroupTracks applies the saved mute-state vector to every pattern in
// the play-screen, and force-mutes every pattern in every other set; used
// when entering group-play mode (spec.md §4.8).
func (sm *SetMapper) MuteGroupTracks() {
	playSet := sm.master.Set(sm.playscreen)
	for n := screenset.Number(0); n < screenset.Number(sm.maxSets); n++ {
		s := sm.master.Set(n)
		if s == nil {
			continue
		}
		if s == playSet {
			s.ForEach(func(slot int, p *pattern.Pattern) {
				if slot < len(sm.playMuteState) {
					p.Armed = sm.playMuteState[slot]
					p.Muted = !sm.playMuteState[slot]
				}
			})
			continue
		}
		s.ForEach(func(slot int, p *pattern.Pattern) {
			p.Muted = true
		})
	}
}
