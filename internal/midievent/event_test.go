package midievent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/miditime"
)

func TestSetChannelStatusEnforcesRange(t *testing.T) {
	e := &Event{}
	assert.True(t, e.SetChannelStatus(StatusNoteOn, 3))
	assert.Equal(t, StatusNoteOn, e.Status)
	assert.Equal(t, Channel(3), e.Channel)

	assert.False(t, e.SetChannelStatus(StatusMeta, 3))
	assert.False(t, e.SetChannelStatus(StatusNoteOn, 16))
}

func TestNoteOnOffClassification(t *testing.T) {
	on := NewChannelVoice(0, StatusNoteOn, 0, 60, 100)
	assert.True(t, on.IsNoteOn())
	assert.False(t, on.IsNoteOff())

	zeroVelOn := NewChannelVoice(0, StatusNoteOn, 0, 60, 0)
	assert.False(t, zeroVelOn.IsNoteOn())
	assert.True(t, zeroVelOn.IsNoteOff())

	off := NewChannelVoice(0, StatusNoteOff, 0, 60, 0)
	assert.True(t, off.IsNoteOff())
}

func TestLinkIsBidirectional(t *testing.T) {
	on := NewChannelVoice(0, StatusNoteOn, 0, 60, 100)
	off := NewChannelVoice(96, StatusNoteOff, 0, 60, 0)
	on.Link(off)
	assert.True(t, on.IsLinked())
	assert.True(t, off.IsLinked())
	assert.Same(t, off, on.LinkedEvent())
	assert.Same(t, on, off.LinkedEvent())

	on.ClearLink()
	assert.False(t, on.IsLinked())
	assert.False(t, off.IsLinked())
	assert.Nil(t, on.LinkedEvent())
}

func TestSetTempoAndIsTempo(t *testing.T) {
	e := &Event{}
	assert.True(t, e.SetTempo(120))
	assert.True(t, e.IsTempo())
	assert.Len(t, e.Sysex, 3)
	assert.False(t, e.SetTempo(0))
}

func TestQuantizeIdempotent(t *testing.T) {
	e := NewChannelVoice(5, StatusNoteOn, 0, 60, 100)
	e.Quantize(48, 0)
	first := e.Timestamp
	e.Quantize(48, 0)
	assert.Equal(t, first, e.Timestamp)
}

func TestQuantizeExample(t *testing.T) {
	// ppqn=192, t=5, snap=48 (sixteenth)
	e := NewChannelVoice(5, StatusNoteOn, 0, 60, 100)
	e.Tighten(48, 0) // moves halfway from 5 toward Snap(Closest, 48, 5)=0
	assert.Contains(t, []miditime.Pulse{2, 3}, e.Timestamp)

	e2 := NewChannelVoice(5, StatusNoteOn, 0, 60, 100)
	e2.Quantize(48, 0)
	assert.Equal(t, miditime.Pulse(0), e2.Timestamp)
}

func TestBytesEncodesNoteOn(t *testing.T) {
	e := NewChannelVoice(0, StatusNoteOn, 2, 60, 100)
	b := e.Bytes()
	assert.NotEmpty(t, b)
}

func TestCloneUnlinks(t *testing.T) {
	on := NewChannelVoice(0, StatusNoteOn, 0, 60, 100)
	off := NewChannelVoice(96, StatusNoteOff, 0, 60, 0)
	on.Link(off)
	c := on.Clone()
	assert.False(t, c.IsLinked())
	assert.Nil(t, c.LinkedEvent())
}
