// Package scales implements key/scale/chord lookup and pitch membership
// tests, per spec.md §4.6.
package scales

import "strings"

// Scale identifies one of the 14 scale policies.
type Scale int

const (
	Off Scale = iota // chromatic
	Major
	Minor
	HarmonicMinor
	MelodicMinor
	WholeTone
	MinorBlues
	MajorPentatonic
	MinorPentatonic
	Phrygian
	Enigmatic
	Diminished
	Dorian
	Mixolydian
	scaleCount
)

var scaleNames = [...]string{
	"Off", "Major", "Minor", "Harmonic Minor", "Melodic Minor", "Whole Tone",
	"Minor Blues", "Major Pentatonic", "Minor Pentatonic", "Phrygian",
	"Enigmatic", "Diminished", "Dorian", "Mixolydian",
}

// cPolicy is each scale's 12-element semitone membership in the key of C.
var cPolicy = [scaleCount][12]bool{
	Off:             {true, true, true, true, true, true, true, true, true, true, true, true},
	Major:           {true, false, true, false, true, true, false, true, false, true, false, true},
	Minor:           {true, false, true, true, false, true, false, true, true, false, true, false},
	HarmonicMinor:   {true, false, true, true, false, true, false, true, true, false, false, true},
	MelodicMinor:    {true, false, true, true, false, true, false, true, false, true, false, true},
	WholeTone:       {true, false, true, false, true, false, true, false, true, false, true, false},
	MinorBlues:      {true, false, false, true, false, true, true, true, false, false, true, false},
	MajorPentatonic: {true, false, true, false, true, false, false, true, false, true, false, false},
	MinorPentatonic: {true, false, false, true, false, true, false, true, false, false, true, false},
	Phrygian:        {true, true, false, true, false, true, false, true, true, false, true, false},
	Enigmatic:       {true, true, false, false, true, false, true, true, true, false, true, false},
	Diminished:      {true, false, true, true, false, true, true, false, true, true, false, true},
	Dorian:          {true, false, true, true, false, true, false, true, false, true, true, false},
	Mixolydian:      {true, false, true, false, true, true, false, true, false, true, true, false},
}

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the sharp-naming for note mod 12.
func NoteName(note int) string {
	n := ((note % 12) + 12) % 12
	return noteNames[n]
}

// Name returns the scale's display name.
func Name(s Scale) string {
	if s < 0 || s >= scaleCount {
		return ""
	}
	return scaleNames[s]
}

// ParseScaleName looks up a scale by its display name, case-insensitively.
func ParseScaleName(name string) (Scale, bool) {
	for i, n := range scaleNames {
		if strings.EqualFold(n, name) {
			return Scale(i), true
		}
	}
	return Off, false
}

// Policy rotates the scale's C-policy right by key semitones and tests
// note mod 12 against it: Policy(scale, key, note) is equivalent to
// testing (note - key) mod 12 against the unrotated C policy.
func Policy(s Scale, key int, note int) bool {
	if s < 0 || s >= scaleCount {
		return true
	}
	idx := (((note - key) % 12) + 12) % 12
	return cPolicy[s][idx]
}

// Up returns the 12-element vector (indexed by semitone in the given key)
// of next-scale-degree semitone deltas, for harmonic (in-scale) upward
// transposition.
func Up(s Scale, key int) [12]int {
	return degreeDeltas(s, key, 1)
}

// Down is the downward analogue of Up.
func Down(s Scale, key int) [12]int {
	return degreeDeltas(s, key, -1)
}

func degreeDeltas(s Scale, key int, dir int) [12]int {
	var out [12]int
	for semitone := 0; semitone < 12; semitone++ {
		delta := 0
		for steps := 1; steps <= 12; steps++ {
			cand := semitone + dir*steps
			if Policy(s, key, cand) {
				delta = dir * steps
				break
			}
		}
		out[semitone] = delta
	}
	return out
}

// NoteHistogram is a 12-bin count of note-on pitches mod 12.
type NoteHistogram [12]int

// KeyScale is one (key, scale) candidate from AnalyzeNotes.
type KeyScale struct {
	Key   int
	Scale Scale
	Hits  int
}

// AnalyzeNotes builds a 12-bin histogram from note numbers and returns all
// (key, scale) pairs (over the 13 non-chromatic scales) tied for the
// maximum number of histogram hits landing on in-scale degrees. Requires
// at least 8 note-ons, per spec.md §4.6.
func AnalyzeNotes(notes []int) []KeyScale {
	if len(notes) < 8 {
		return nil
	}
	var hist NoteHistogram
	for _, n := range notes {
		idx := ((n % 12) + 12) % 12
		hist[idx]++
	}
	best := -1
	var results []KeyScale
	for key := 0; key < 12; key++ {
		for s := Major; s < scaleCount; s++ {
			hits := 0
			for pitch := 0; pitch < 12; pitch++ {
				if hist[pitch] > 0 && Policy(s, key, pitch) {
					hits += hist[pitch]
				}
			}
			switch {
			case hits > best:
				best = hits
				results = []KeyScale{{key, s, hits}}
			case hits == best:
				results = append(results, KeyScale{key, s, hits})
			}
		}
	}
	return results
}

// Chord is one named chord quality as semitone offsets from the root.
type Chord struct {
	Name    string
	Offsets []int
}

var chordTable = buildChordTable()

func buildChordTable() []Chord {
	return []Chord{
		{"Major", []int{0, 4, 7}},
		{"Minor", []int{0, 3, 7}},
		{"Major 7th", []int{0, 4, 7, 11}},
		{"Minor 7th", []int{0, 3, 7, 10}},
		{"Dominant 7th", []int{0, 4, 7, 10}},
		{"Diminished", []int{0, 3, 6}},
		{"Diminished 7th", []int{0, 3, 6, 9}},
		{"Augmented", []int{0, 4, 8}},
		{"Augmented 7th", []int{0, 4, 8, 10}},
		{"Suspended 4th", []int{0, 5, 7}},
		{"Suspended 2nd", []int{0, 2, 7}},
		{"6th", []int{0, 4, 7, 9}},
		{"Minor 6th", []int{0, 3, 7, 9}},
		{"6/9", []int{0, 4, 7, 9, 14}},
		{"9th", []int{0, 4, 7, 10, 14}},
		{"Major 9th", []int{0, 4, 7, 11, 14}},
		{"Minor 9th", []int{0, 3, 7, 10, 14}},
		{"Minor Major 9th", []int{0, 3, 7, 11, 14}},
		{"Add 9", []int{0, 4, 7, 14}},
		{"Minor Add 9", []int{0, 3, 7, 14}},
		{"11th", []int{0, 4, 7, 10, 14, 17}},
		{"Minor 11th", []int{0, 3, 7, 10, 14, 17}},
		{"Sharp 11th", []int{0, 4, 7, 11, 14, 18}},
		{"13th", []int{0, 4, 7, 10, 14, 17, 21}},
		{"Major 13th", []int{0, 4, 7, 11, 14, 17, 21}},
		{"Minor 13th", []int{0, 3, 7, 10, 14, 17, 21}},
		{"Half Diminished", []int{0, 3, 6, 10}},
		{"Minor Major 7th", []int{0, 3, 7, 11}},
		{"Power Chord", []int{0, 7}},
		{"Dominant 7 Flat 5", []int{0, 4, 6, 10}},
		{"Dominant 7 Flat 9", []int{0, 4, 7, 10, 13}},
		{"Dominant 7 Sharp 9", []int{0, 4, 7, 10, 15}},
		{"Major 7 Flat 5", []int{0, 4, 6, 11}},
		{"Major 7 Sharp 5", []int{0, 4, 8, 11}},
		{"Seven Six", []int{0, 4, 7, 9, 10}},
		{"Seventh Suspended 4th", []int{0, 5, 7, 10}},
		{"Ninth Suspended 4th", []int{0, 5, 7, 10, 14}},
		{"Lydian", []int{0, 4, 7, 11, 18}},
		{"Altered Dominant", []int{0, 4, 8, 10, 13, 15}},
		{"Quartal", []int{0, 5, 10}},
	}
}

// ChordCount returns how many chord qualities are tabulated.
func ChordCount() int { return len(chordTable) }

// ChordByIndex looks up a chord by index; ok is false if out of range,
// mirroring the "-1 terminated table" lookup from spec.md §4.6.
func ChordByIndex(i int) (Chord, bool) {
	if i < 0 || i >= len(chordTable) {
		return Chord{}, false
	}
	return chordTable[i], true
}

// ChordByName looks up a chord by its display name, case-insensitively.
func ChordByName(name string) (Chord, bool) {
	for _, c := range chordTable {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Chord{}, false
}

// ChordNotes returns the absolute note numbers for a chord rooted at root.
func ChordNotes(root int, c Chord) []int {
	notes := make([]int, len(c.Offsets))
	for i, off := range c.Offsets {
		notes[i] = root + off
	}
	return notes
}

// keySigRow is one row of the 15-row key-signature table.
type keySigRow struct {
	sfCount int
	major   string
	minor   string
}

var keySigTable = []keySigRow{
	{-7, "Cb", "Abm"}, {-6, "Gb", "Ebm"}, {-5, "Db", "Bbm"}, {-4, "Ab", "Fm"},
	{-3, "Eb", "Cm"}, {-2, "Bb", "Gm"}, {-1, "F", "Dm"}, {0, "C", "Am"},
	{1, "G", "Em"}, {2, "D", "Bm"}, {3, "A", "F#m"}, {4, "E", "C#m"},
	{5, "B", "G#m"}, {6, "F#", "D#m"}, {7, "C#", "A#m"},
}

// KeySignatureBytes writes [sfCount, 0|1] (major=0, minor=1) for the given
// key-signature name; ok is false if not found.
func KeySignatureBytes(name string) (out [2]byte, ok bool) {
	for _, row := range keySigTable {
		if strings.EqualFold(row.major, name) {
			return [2]byte{byte(int8(row.sfCount)), 0}, true
		}
		if strings.EqualFold(row.minor, name) {
			return [2]byte{byte(int8(row.sfCount)), 1}, true
		}
	}
	return out, false
}

// KeySignatureName is the inverse of KeySignatureBytes.
func KeySignatureName(sfCount int8, minor bool) (string, bool) {
	for _, row := range keySigTable {
		if row.sfCount == int(sfCount) {
			if minor {
				return row.minor, true
			}
			return row.major, true
		}
	}
	return "", false
}
