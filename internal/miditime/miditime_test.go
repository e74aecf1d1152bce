package miditime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTiming() Timing {
	return Timing{Bpm: 120, BeatsPerBar: 4, BeatWidth: 4, Ppqn: 192}
}

func TestPulsesPerMeasureIndependentOfTimeSignature(t *testing.T) {
	assert.Equal(t, Pulse(768), PulsesPerMeasure(192))
}

func TestMeasuresToTicksZeroBeatWidth(t *testing.T) {
	assert.Equal(t, Pulse(0), MeasuresToTicks(4, 192, 0, 1))
}

func TestMeasuresToTicksRoundTrip(t *testing.T) {
	ticks := MeasuresToTicks(4, 192, 4, 2)
	assert.Equal(t, Pulse(1536), ticks)
	assert.InDelta(t, 2.0, TicksToMeasures(ticks, 4, 192, 4), 1e-9)
}

func TestBBTRoundTrip(t *testing.T) {
	timing := defaultTiming()
	for _, p := range []Pulse{0, 1, 96, 768, 769, 1535} {
		s := PulsesToStringBBT(p, timing)
		got := StringToPulses(s, timing, false)
		assert.Equal(t, p, got, "round trip for pulse %d via %q", p, s)
	}
}

func TestStringToPulsesParseFailure(t *testing.T) {
	timing := defaultTiming()
	assert.Equal(t, NullPulse, StringToPulses("not-a-time", timing, false))
	assert.Equal(t, NullPulse, StringToPulses("1:2", timing, false))
}

func TestTempoRoundTrip(t *testing.T) {
	bpm := 128.5
	us := TempoUsFromBpm(bpm)
	assert.InDelta(t, bpm, BpmFromTempoUs(us), 0.01)

	packed := TempoBytes(bpm)
	assert.InDelta(t, bpm, TempoFromBytes(packed), 0.01)
}

func TestRescaleTick(t *testing.T) {
	assert.Equal(t, Pulse(384), RescaleTick(192, 192, 96))
	assert.Equal(t, Pulse(96), RescaleTick(192, 96, 192))
}

func TestSnap(t *testing.T) {
	assert.Equal(t, Pulse(0), Snap(SnapDown, 48, 5))
	assert.Equal(t, Pulse(0), Snap(SnapClosest, 48, 5))
	assert.Equal(t, Pulse(48), Snap(SnapClosest, 48, 30))
	assert.Equal(t, Pulse(48), Snap(SnapUp, 48, 5))
	// Ties break to Down.
	assert.Equal(t, Pulse(0), Snap(SnapClosest, 48, 24))
}

func TestPulseLengthUs(t *testing.T) {
	// 120 BPM, 192 ppqn -> 60e6/(120*192) us per pulse
	assert.InDelta(t, 2604.1666, PulseLengthUs(120, 192), 0.001)
	assert.Equal(t, float64(0), PulseLengthUs(0, 192))
}
