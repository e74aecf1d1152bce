package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	assert.NoError(t, cmd.Execute())
	return buf.String()
}

func TestScaleList(t *testing.T) {
	out := run(t, "scale", "list")
	assert.Contains(t, out, "Major")
	assert.Contains(t, out, "Mixolydian")
}

func TestScaleNotes(t *testing.T) {
	out := run(t, "scale", "notes", "Major", "--key", "0")
	notes := strings.Fields(out)
	assert.Equal(t, []string{"C", "D", "E", "F", "G", "A", "B"}, notes)
}

func TestScaleNotesUnknown(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"scale", "notes", "Nonexistent"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestChordList(t *testing.T) {
	out := run(t, "chord", "list")
	assert.Contains(t, out, "Major")
	assert.Contains(t, out, "Quartal")
}

func TestChordNotes(t *testing.T) {
	out := run(t, "chord", "notes", "Major", "--root", "60")
	notes := strings.Fields(out)
	assert.Equal(t, []string{"60", "64", "67"}, notes)
}

func TestBBTToPulsesAndBack(t *testing.T) {
	out := run(t, "bbt", "to-pulses", "2:1:0", "--ppqn", "192", "--beats-per-bar", "4")
	assert.Equal(t, "768\n", out)

	out = run(t, "bbt", "to-string", "768", "--ppqn", "192", "--beats-per-bar", "4")
	assert.Equal(t, "2:1:0\n", out)
}

func TestBBTToPulsesBadInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"bbt", "to-pulses", "not-a-time"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestTempoFromWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take1.wav")
	writeSilentWav(t, path, 44100, 7.5)

	out := run(t, "tempo-from-wav", path)
	assert.Equal(t, "bpm=128.00 beats=16\n", out)
}

// writeSilentWav crafts a minimal 16-bit mono PCM WAV file, mirroring the
// bpmdetect package's own test fixture builder.
func writeSilentWav(t *testing.T, path string, sampleRate int, seconds float64) {
	t.Helper()
	numFrames := int(float64(sampleRate) * seconds)
	dataSize := numFrames * 2

	buf := make([]byte, 0, 44+dataSize)
	write := func(b []byte) { buf = append(buf, b...) }
	u32 := func(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))
	write([]byte("fmt "))
	write(u32(16))
	write(u16(1))
	write(u16(1))
	write(u32(uint32(sampleRate)))
	write(u32(uint32(sampleRate * 2)))
	write(u16(2))
	write(u16(16))
	write([]byte("data"))
	write(u32(uint32(dataSize)))
	write(make([]byte, dataSize))

	assert.NoError(t, os.WriteFile(path, buf, 0o644))
}
