package portslist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFromNickNameNotFound(t *testing.T) {
	pl := New(true)
	assert.Equal(t, NullBuss, pl.BusFromNickName("nope"))
}

func TestBusFromNickNameFound(t *testing.T) {
	pl := New(true)
	pl.Add(PortEntry{Buss: 3, NickName: "3"})
	assert.Equal(t, Buss(3), pl.BusFromNickName("3"))
}

func TestMatchUpOverlaysStatus(t *testing.T) {
	pl := New(true)
	pl.Add(PortEntry{Buss: 0, Name: "Midi Through", Enabled: false, Clock: Disabled})

	source := New(false)
	source.Add(PortEntry{Buss: 5, Name: "Midi Through", Enabled: true, Clock: Pos})

	pl.MatchUp(source)
	e := pl.Get(0)
	assert.True(t, e.Enabled)
	assert.Equal(t, Pos, e.Clock)
}

func TestExtractNicknameBracketedForm(t *testing.T) {
	got := ExtractNickname("[14] 20:0 Midi Through Port-0")
	assert.Equal(t, "Midi Through Port-0", got)
}

func TestExtractNicknameA2jForm(t *testing.T) {
	got := ExtractNickname("a2j:Midi Through [14] (playback): Midi Through Port-0")
	assert.Equal(t, "Midi Through Port-0", got)
}

func TestExtractNicknameShortForm(t *testing.T) {
	got := ExtractNickname("Client:Port")
	assert.Equal(t, "Client:Port", got)
}

func TestExtractNicknameFallback(t *testing.T) {
	got := ExtractNickname("unstructured name")
	assert.Equal(t, "unstructured name", got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	pl := New(true)
	pl.Add(PortEntry{Buss: 2, Name: "foo", NickName: "2", Enabled: true})

	data, err := pl.Snapshot()
	assert.NoError(t, err)

	loaded, err := Load(data)
	assert.NoError(t, err)
	assert.Equal(t, "foo", loaded.Get(2).Name)
	assert.True(t, loaded.isMap)
}
