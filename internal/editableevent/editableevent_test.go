package editableevent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/eventlist"
	"seqcore/internal/midievent"
	"seqcore/internal/miditime"
)

func TestStatusStringChannelMessage(t *testing.T) {
	e := midievent.NewChannelVoice(0, midievent.StatusNoteOn, 0, 60, 100)
	ee := New(e, Pulses)
	assert.Equal(t, ChannelMessage, ee.Category)
	assert.Equal(t, "Note On", ee.StatusString())
	assert.Equal(t, "1", ee.ChannelString())
}

func TestDataStringTempo(t *testing.T) {
	e := &midievent.Event{}
	e.SetTempo(120)
	ee := New(e, Pulses)
	assert.Equal(t, "120.00", ee.DataString())
}

func TestSetStatusFromStringRejectsBadChannel(t *testing.T) {
	e := midievent.NewChannelVoice(0, midievent.StatusNoteOn, 0, 60, 100)
	ee := New(e, Pulses)
	ok := ee.SetStatusFromString(0, "Note On", 60, 100, 99, "")
	assert.False(t, ok)
}

func TestSetStatusFromStringTempo(t *testing.T) {
	e := midievent.NewMeta(0, midievent.MetaTempo, nil)
	ee := New(e, Pulses)
	ok := ee.SetStatusFromString(10, "Tempo", 0, 0, 0, "140.00")
	assert.True(t, ok)
	assert.True(t, e.IsTempo())
	assert.Equal(t, miditime.Pulse(10), e.Timestamp)
}

func TestSeqSpecRoundTrip(t *testing.T) {
	e := midievent.NewMeta(0, midievent.MetaSeqSpec, []byte{0x24, 0x24, 0x00, 0x01})
	ee := New(e, Pulses)
	assert.Equal(t, SeqSpecEvent, ee.Category)
	assert.Equal(t, "Triggers", ee.StatusString())

	ok := ee.SetStatusFromString(5, "Mute Groups", 0, 0, 0, "payload")
	assert.True(t, ok)
	assert.Equal(t, SeqSpecEvent, categoryOf(e))
	assert.Equal(t, "Mute Groups", ee.StatusString())
	assert.Contains(t, ee.DataString(), "payload")
}

func TestSessionInsertRejectsNonEditableMeta(t *testing.T) {
	list := eventlist.New(192)
	s := NewSession(list, Pulses)

	trackEnd := midievent.NewMeta(0, midievent.MetaTrackEnd, nil)
	assert.False(t, s.Insert(trackEnd))

	marker := midievent.NewMeta(0, midievent.MetaMarker, []byte("verse"))
	assert.True(t, s.Insert(marker))
}

func TestSessionSaveAndCancel(t *testing.T) {
	list := eventlist.New(192)
	list.Append(midievent.NewChannelVoice(0, midievent.StatusNoteOn, 0, 60, 100))
	list.Append(midievent.NewChannelVoice(96, midievent.StatusNoteOff, 0, 60, 0))
	list.VerifyAndLink(192, false)

	s := NewSession(list, Pulses)
	assert.Len(t, s.Rows(), 2)

	s.Delete(0)
	assert.True(t, s.IsDirty())
	s.Cancel()
	assert.False(t, s.IsDirty())
	assert.Equal(t, 2, list.Count())

	s.Delete(0)
	s.Save(192, false)
	assert.Equal(t, 1, list.Count())
	assert.False(t, s.IsDirty())
}
