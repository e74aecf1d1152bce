// Package bpmdetect seeds a miditime.Timing's Bpm field from a WAV file's
// duration, adapted from the teacher's internal/getbpm (a standalone
// BPM-guesser for one-shot sample loading) onto this core's Timing type.
// The teacher's filename-convention parsing (bpm/beats embedded in a
// tracker sample's name, e.g. "loop_bpm128_beats16.wav") has no analog
// here — a live performance has no such naming convention to read — so
// only its duration-based candidate search is kept.
package bpmdetect

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/go-audio/wav"

	"seqcore/internal/miditime"
)

// Detect estimates a bpm and beat count for filename from its duration
// alone, preferring power-of-two beat counts among equally-close guesses.
func Detect(filename string) (beats float64, bpm float64, err error) {
	return guess(filename)
}

// SeedTiming applies Detect's bpm estimate to timing.Bpm, leaving timing
// unchanged if detection fails.
func SeedTiming(filename string, timing *miditime.Timing) error {
	_, bpm, err := Detect(filename)
	if err != nil {
		return err
	}
	timing.Bpm = bpm
	return nil
}

func guess(fname string) (beats float64, bpm float64, err error) {
	duration, _, _, err := Length(fname)
	if err != nil {
		return
	}

	multiple := 2.0
	if os.Getenv("BPMDETECT_MULTIPLE") != "" {
		multiple, _ = strconv.ParseFloat(os.Getenv("BPMDETECT_MULTIPLE"), 64)
		if multiple == 0 {
			multiple = 2.0
		}
	}
	type candidate struct {
		diff, bpm, beats float64
	}
	candidates := make([]candidate, 0, 80000)
	for beat := 1.0; beat <= 128; beat++ {
		for bp := 100.0; bp < 200; bp++ {
			candidates = append(candidates, candidate{math.Abs(duration - beat*multiple*60.0/bp), bp, beat * multiple})
		}
	}

	isPowerOfTwo := func(n float64) bool {
		if n < 1 {
			return false
		}
		log2 := math.Log2(n)
		return math.Abs(log2-math.Round(log2)) < 1e-9
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].diff != candidates[j].diff {
			return candidates[i].diff < candidates[j].diff
		}
		iPower, jPower := isPowerOfTwo(candidates[i].beats), isPowerOfTwo(candidates[j].beats)
		if iPower != jPower {
			return iPower
		}
		return candidates[i].beats < candidates[j].beats
	})

	beats = candidates[0].beats
	bpm = candidates[0].bpm
	return
}

// Length returns a WAV file's duration in seconds, its sample rate, and
// its total frame count.
func Length(filename string) (seconds float64, sampleRate int64, totalFrames int64, err error) {
	f, openErr := os.Open(filename)
	if openErr != nil {
		err = fmt.Errorf("open: %w", openErr)
		return
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		err = fmt.Errorf("invalid WAV file")
		return
	}
	d.ReadInfo()

	const wavFormatPCM = 1
	const wavFormatExtensible = 65534
	if int(d.WavAudioFormat) != wavFormatPCM && int(d.WavAudioFormat) != wavFormatExtensible {
		var dur time.Duration
		dur, err = d.Duration()
		if err != nil {
			err = fmt.Errorf("duration (non-PCM): %w", err)
			return
		}
		seconds = dur.Seconds()
		sampleRate = int64(d.SampleRate)
		totalFrames = int64(dur.Seconds() * float64(d.SampleRate))
		return
	}

	if d.SampleRate == 0 {
		err = fmt.Errorf("invalid sample rate: 0")
		return
	}
	bytesPerSample := int64(d.BitDepth) / 8
	if bytesPerSample <= 0 {
		err = fmt.Errorf("invalid bit depth: %d", d.BitDepth)
		return
	}
	chans := int64(d.NumChans)
	if chans <= 0 {
		err = fmt.Errorf("invalid channel count: %d", d.NumChans)
		return
	}

	if !d.WasPCMAccessed() && d.PCMChunk == nil {
		if fwdErr := d.FwdToPCM(); fwdErr != nil {
			err = fmt.Errorf("locate PCM: %w", fwdErr)
			return
		}
	}

	totalBytes := d.PCMLen()
	if totalBytes <= 0 {
		err = fmt.Errorf("no PCM data")
		return
	}

	frameSize := bytesPerSample * chans
	if frameSize == 0 {
		err = fmt.Errorf("invalid frame size")
		return
	}

	totalFrames = totalBytes / frameSize
	seconds = float64(totalFrames) / float64(d.SampleRate)
	sampleRate = int64(d.SampleRate)
	return
}
