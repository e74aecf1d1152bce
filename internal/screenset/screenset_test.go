package screenset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/pattern"
)

func TestInsertAndSlot(t *testing.T) {
	s := New(0, 4, 8)
	p := pattern.New(5, 768, 192)
	assert.True(t, s.Insert(5, p))
	assert.Equal(t, p, s.Slot(5))
	assert.Equal(t, 1, s.Count())
}

func TestInsertRejectsOccupiedOrOutOfRange(t *testing.T) {
	s := New(0, 4, 8)
	p1 := pattern.New(0, 768, 192)
	p2 := pattern.New(1, 768, 192)
	assert.True(t, s.Insert(0, p1))
	assert.False(t, s.Insert(0, p2))
	assert.False(t, s.Insert(-1, p2))
	assert.False(t, s.Insert(s.Capacity(), p2))
}

func TestRemove(t *testing.T) {
	s := New(0, 4, 8)
	p := pattern.New(0, 768, 192)
	s.Insert(3, p)
	assert.Equal(t, p, s.Remove(3))
	assert.Nil(t, s.Slot(3))
	assert.Equal(t, 0, s.Count())
}

func TestFirstFreeSlotFrom(t *testing.T) {
	s := New(0, 4, 8)
	s.Insert(0, pattern.New(0, 768, 192))
	s.Insert(1, pattern.New(1, 768, 192))
	assert.Equal(t, 2, s.FirstFreeSlotFrom(0))
	assert.Equal(t, -1, s.FirstFreeSlotFrom(s.Capacity()))
}

func TestForEachVisitsInSlotOrder(t *testing.T) {
	s := New(0, 4, 8)
	s.Insert(3, pattern.New(3, 768, 192))
	s.Insert(1, pattern.New(1, 768, 192))

	var seen []int
	s.ForEach(func(slot int, p *pattern.Pattern) {
		seen = append(seen, slot)
	})
	assert.Equal(t, []int{1, 3}, seen)
}

func TestPlayscreenFlag(t *testing.T) {
	s := New(2, 4, 8)
	assert.False(t, s.IsPlayscreen())
	s.SetPlayscreen(true)
	assert.True(t, s.IsPlayscreen())
	assert.Equal(t, Number(2), s.SetNumber())
}
