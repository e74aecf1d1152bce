package setmapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/mutegroup"
	"seqcore/internal/pattern"
	"seqcore/internal/screenset"
	"seqcore/internal/setmaster"
)

func newMapper() (*SetMapper, *setmaster.SetMaster, *mutegroup.MuteGroups) {
	master := setmaster.New(4, 8, mutegroup.RowMajor)
	mutes := mutegroup.New(4, 8, mutegroup.RowMajor)
	sm := New(master, mutes, 32, 8)
	return sm, master, mutes
}

func TestSeqSet(t *testing.T) {
	sm, _, _ := newMapper()
	set, offset := sm.SeqSet(40)
	assert.Equal(t, screenset.Number(1), set)
	assert.Equal(t, 8, offset)
}

func TestInstallSequenceFindsFreeSlot(t *testing.T) {
	sm, master, _ := newMapper()
	p1 := pattern.New(0, 192, 192)
	assert.True(t, sm.InstallSequence(p1))

	p2 := pattern.New(0, 192, 192) // same slot 0, should bump forward
	assert.True(t, sm.InstallSequence(p2))

	s := master.Set(0)
	assert.Same(t, p1, s.Slot(0))
	assert.Same(t, p2, s.Slot(1))
	assert.Equal(t, 2, sm.SequenceCount())
}

func TestInstallSequenceFailsBeyondMaxSets(t *testing.T) {
	sm, _, _ := newMapper()
	p := pattern.New(pattern.Number(8*32), 192, 192) // set 8, maxSets=8 -> out of range
	assert.False(t, sm.InstallSequence(p))
}

func TestSetPlayscreenFallsBackToZero(t *testing.T) {
	sm, master, _ := newMapper()
	master.AddSet(0)
	sm.SetPlayscreen(99)
	assert.Equal(t, screenset.Number(0), sm.Playscreen())
}

func TestApplyAndUnapplyMutesThroughPlayscreen(t *testing.T) {
	sm, master, mutes := newMapper()
	s := master.AddSet(0)
	p := pattern.New(0, 192, 192)
	s.Insert(0, p)
	sm.SetPlayscreen(0)

	mutes.Group(2).Bits[0] = true
	assert.True(t, sm.ApplyMutes(2))
	assert.True(t, p.Armed)

	sm.UnapplyMutes(2)
	assert.False(t, p.Armed)
}

func TestLearnAndMuteGroupTracks(t *testing.T) {
	sm, master, _ := newMapper()
	s0 := master.AddSet(0)
	s1 := master.AddSet(1)
	p0 := pattern.New(0, 192, 192)
	p0.Armed = true
	s0.Insert(0, p0)
	p1 := pattern.New(32, 192, 192)
	s1.Insert(0, p1)

	sm.SetPlayscreen(0)
	ok := sm.LearnMutes(true, 5, "group5")
	assert.True(t, ok)

	sm.MuteGroupTracks()
	assert.False(t, p0.Muted)
	assert.True(t, p1.Muted)
}
