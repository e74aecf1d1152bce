package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/miditime"
)

func TestAddTrimsOverlappingNeighbors(t *testing.T) {
	tl := New(1000, 192)
	tl.Add(0, 100, 0, 0)  // [0,99]
	tl.Add(50, 100, 0, 0) // [50,149] should shrink the first to [0,49]
	assert.True(t, tl.NoOverlap())
	assert.Equal(t, 2, tl.Count())
}

func TestSplitMiddle(t *testing.T) {
	tl := New(1000, 192)
	tl.Add(0, 1000, 0, 0) // [0,999]
	ok := tl.Split(500, SplitMiddle, 0)
	assert.True(t, ok)
	assert.Equal(t, 2, tl.Count())
	assert.Equal(t, Trigger{Start: 0, End: 499}, withoutOffset(tl.Triggers()[0]))
	assert.Equal(t, Trigger{Start: 500, End: 999}, withoutOffset(tl.Triggers()[1]))
}

func withoutOffset(t Trigger) Trigger {
	return Trigger{Start: t.Start, End: t.End}
}

func TestPasteChain(t *testing.T) {
	tl := New(10000, 192)
	tl.Add(100, 100, 0, 0) // [100,199]
	tl.SelectAll()
	tl.CopySelected()

	tl.Paste(nil)
	assertHasTrigger(t, tl, 200, 299)

	tl.Paste(nil)
	assertHasTrigger(t, tl, 300, 399)

	fifty := miditime.Pulse(50)
	tl.Paste(&fifty)
	assertHasTrigger(t, tl, 50, 149)

	tl.Paste(nil)
	assertHasTrigger(t, tl, 150, 249)
}

func assertHasTrigger(t *testing.T, tl *TriggerList, start, end miditime.Pulse) {
	t.Helper()
	for _, tr := range tl.Triggers() {
		if tr.Start == start && tr.End == end {
			return
		}
	}
	t.Fatalf("expected trigger [%d,%d] in %+v", start, end, tl.Triggers())
}

func TestNonOverlapInvariantUnderSequence(t *testing.T) {
	tl := New(10000, 192)
	tl.Add(0, 500, 0, 0)
	tl.Add(400, 500, 0, 0)
	tl.Split(600, SplitExact, 0)
	tl.GrowTrigger(0, 0, 1200)
	tl.MoveTriggers(0, 100, Right)
	assert.True(t, tl.NoOverlap())
}

func TestUndoRedo(t *testing.T) {
	tl := New(10000, 192)
	tl.Add(0, 100, 0, 0)
	tl.PushUndo()
	tl.Add(200, 100, 0, 0)
	assert.Equal(t, 2, tl.Count())

	tl.PopUndo()
	assert.Equal(t, 1, tl.Count())
	assert.Equal(t, 0, tl.SelectedCount())

	tl.PopUndo() // no-op, stack empty
	assert.Equal(t, 1, tl.Count())
}

func TestAddOverlappingTriggerDoesNotLeaveOverlap(t *testing.T) {
	tl := New(5000, 192)
	tl.Add(0, 1000, 0, 0)
	tl.Add(500, 1000, 0, 0) // should truncate first to [0,499]
	assert.True(t, tl.NoOverlap())
}

func TestPlayEmitsOnAndOff(t *testing.T) {
	tl := New(1000, 192)
	tl.Add(100, 200, 5, 0) // [100,299], offset=5

	onEdge := tl.Play(90, 110, false)
	assert.Equal(t, TriggerOn, onEdge.Kind)
	assert.Equal(t, miditime.Pulse(100), onEdge.PatternTick)
	assert.Equal(t, miditime.Pulse(5), onEdge.Offset)

	offEdge := tl.Play(290, 310, false)
	assert.Equal(t, TriggerOff, offEdge.Kind)
	assert.Equal(t, miditime.Pulse(299), offEdge.PatternTick)
}

func TestIntersect(t *testing.T) {
	tl := New(1000, 192)
	tl.Add(100, 200, 0, 0)
	start, end, ok := tl.Intersect(150)
	assert.True(t, ok)
	assert.Equal(t, miditime.Pulse(100), start)
	assert.Equal(t, miditime.Pulse(299), end)

	_, _, ok = tl.Intersect(50)
	assert.False(t, ok)
}
