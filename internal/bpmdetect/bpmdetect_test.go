package bpmdetect

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"seqcore/internal/miditime"
)

// writeSilentWav crafts a minimal 16-bit mono PCM WAV file of the given
// duration so Length/Detect can be exercised without a fixture asset.
func writeSilentWav(t *testing.T, path string, sampleRate int, seconds float64) {
	t.Helper()
	numFrames := int(float64(sampleRate) * seconds)
	dataSize := numFrames * 2 // 16-bit mono

	buf := make([]byte, 0, 44+dataSize)
	write := func(b []byte) { buf = append(buf, b...) }
	u32 := func(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))
	write([]byte("fmt "))
	write(u32(16))
	write(u16(1)) // PCM
	write(u16(1)) // mono
	write(u32(uint32(sampleRate)))
	byteRate := sampleRate * 2
	write(u32(uint32(byteRate)))
	write(u16(2))  // block align
	write(u16(16)) // bits per sample
	write([]byte("data"))
	write(u32(uint32(dataSize)))
	write(make([]byte, dataSize))

	assert.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestLengthComputesDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeSilentWav(t, path, 44100, 2.0)

	seconds, sampleRate, frames, err := Length(path)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, seconds, 0.01)
	assert.Equal(t, int64(44100), sampleRate)
	assert.Equal(t, int64(88200), frames)
}

func TestDetectGuessesFromDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take1.wav")
	writeSilentWav(t, path, 44100, 7.5)

	beats, bpm, err := Detect(path)
	assert.NoError(t, err)
	assert.Equal(t, 128.0, bpm)
	assert.Equal(t, 16.0, beats)
}

func TestSeedTimingAppliesBpm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take2.wav")
	writeSilentWav(t, path, 44100, 6.857)

	timing := miditime.Timing{Bpm: 120, BeatsPerBar: 4, BeatWidth: 4, Ppqn: 192}
	err := SeedTiming(path, &timing)
	assert.NoError(t, err)
	assert.Equal(t, 140.0, timing.Bpm)
}
