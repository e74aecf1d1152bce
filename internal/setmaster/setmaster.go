// Package setmaster implements SetMaster, spec.md §4.8: the grid of
// screensets, keyed by set number, plus one sentinel past the last real
// set, and the grid<->number mapping.
package setmaster

import (
	"seqcore/internal/mutegroup"
	"seqcore/internal/pattern"
	"seqcore/internal/screenset"
)

const Unassigned screenset.Number = -1

// SetMaster owns every Screenset in a session.
type SetMaster struct {
	sets        map[screenset.Number]*screenset.Screenset
	rows, cols  int
	orientation mutegroup.GridOrientation
	highestSet  screenset.Number
}

// New creates a SetMaster with the given grid shape and cell ordering.
func New(rows, cols int, orientation mutegroup.GridOrientation) *SetMaster {
	sm := &SetMaster{
		sets:        make(map[screenset.Number]*screenset.Screenset),
		rows:        rows,
		cols:        cols,
		orientation: orientation,
		highestSet:  Unassigned,
	}
	sm.AddSet(screenset.ScreensetLimit)
	return sm
}

// HighestSet returns the maximum occupied set number, or Unassigned.
func (sm *SetMaster) HighestSet() screenset.Number { return sm.highestSet }

// ScreensetCount excludes the ScreensetLimit sentinel.
func (sm *SetMaster) ScreensetCount() int {
	count := 0
	for n := range sm.sets {
		if n != screenset.ScreensetLimit {
			count++
		}
	}
	return count
}

// Set returns the screenset at n, or nil if absent.
func (sm *SetMaster) Set(n screenset.Number) *screenset.Screenset { return sm.sets[n] }

// Rename assigns set n's display name, failing if n does not exist.
func (sm *SetMaster) Rename(n screenset.Number, name string) bool {
	s, ok := sm.sets[n]
	if !ok {
		return false
	}
	s.SetName(name)
	return true
}

// AddSet creates an empty screenset at key n, updating highestSet.
func (sm *SetMaster) AddSet(n screenset.Number) *screenset.Screenset {
	s := screenset.New(n, sm.rows, sm.cols)
	sm.sets[n] = s
	if n != screenset.ScreensetLimit && (sm.highestSet == Unassigned || n > sm.highestSet) {
		sm.highestSet = n
	}
	return s
}

// GridToSet maps a (row, col) grid cell to a set number, honoring the
// constructor's orientation; out-of-range cells fall back to set 0.
func (sm *SetMaster) GridToSet(row, col int) screenset.Number {
	if row < 0 || row >= sm.rows || col < 0 || col >= sm.cols {
		return 0
	}
	if sm.orientation == mutegroup.ColumnMajor {
		return screenset.Number(col + sm.cols*row)
	}
	return screenset.Number(row + sm.rows*col)
}

// SetToGrid is the inverse of GridToSet.
func (sm *SetMaster) SetToGrid(n screenset.Number) (row, col int) {
	v := int(n)
	if sm.orientation == mutegroup.ColumnMajor {
		return v / sm.cols, v % sm.cols
	}
	return v % sm.rows, v / sm.rows
}

// SwapSets exchanges sets a and b, renumbering every pattern each copy
// contains to match its new key (spec.md §4.8).
func (sm *SetMaster) SwapSets(a, b screenset.Number) bool {
	setA, okA := sm.sets[a]
	setB, okB := sm.sets[b]
	if !okA || !okB {
		return false
	}
	setSize := sm.rows * sm.cols
	renumbered := func(src *screenset.Screenset, newKey screenset.Number) *screenset.Screenset {
		dst := screenset.New(newKey, sm.rows, sm.cols)
		dst.SetName(src.Name())
		src.ForEach(func(slot int, p *pattern.Pattern) {
			p.Renumber(pattern.Number(int(newKey)*setSize + slot))
			dst.Insert(slot, p)
		})
		return dst
	}
	newA := renumbered(setB, a)
	newB := renumbered(setA, b)
	sm.sets[a] = newA
	sm.sets[b] = newB
	return true
}

// RemoveSet deletes set n, returning false if it did not exist.
func (sm *SetMaster) RemoveSet(n screenset.Number) bool {
	if _, ok := sm.sets[n]; !ok {
		return false
	}
	delete(sm.sets, n)
	if n == sm.highestSet {
		sm.recomputeHighest()
	}
	return true
}

func (sm *SetMaster) recomputeHighest() {
	sm.highestSet = Unassigned
	for n := range sm.sets {
		if n != screenset.ScreensetLimit && (sm.highestSet == Unassigned || n > sm.highestSet) {
			sm.highestSet = n
		}
	}
}
