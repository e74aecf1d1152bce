// Package pattern defines the minimal per-slot unit that a Screenset holds:
// one pattern's event list, trigger list, and mute/armed state.
package pattern

import (
	"seqcore/internal/eventlist"
	"seqcore/internal/miditime"
	"seqcore/internal/trigger"
)

// Number identifies a pattern by its global, flat index (spec.md §3.1's
// PatternNumber); -1 is Unassigned.
type Number int

const Unassigned Number = -1

// Pattern is one loop: its sorted event list, its song-mode trigger list,
// and the state SetMapper/MuteGroups push through it.
type Pattern struct {
	Number  Number
	Events  *eventlist.EventList
	Trigger *trigger.TriggerList
	Muted   bool
	Armed   bool
}

// New builds an empty pattern of the given length/ppqn.
func New(n Number, length miditime.Pulse, ppqn int) *Pattern {
	return &Pattern{
		Number:  n,
		Events:  eventlist.New(length),
		Trigger: trigger.New(length, ppqn),
	}
}

// Renumber changes the pattern's own identity; used by SetMaster.SwapSets
// to keep every contained pattern's number congruent with its new slot.
func (p *Pattern) Renumber(n Number) { p.Number = n }
