package scales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyCMajor(t *testing.T) {
	assert.True(t, Policy(Major, 0, 0))
	assert.False(t, Policy(Major, 0, 1))
	assert.True(t, Policy(Major, 0, 11))
}

func TestPolicyKeyRotation(t *testing.T) {
	// D major (key=2) should accept note 2 (the tonic) the way C major
	// accepts note 0.
	assert.True(t, Policy(Major, 2, 2))
	assert.False(t, Policy(Major, 2, 3))
}

func TestNoteNameWrapsNegative(t *testing.T) {
	assert.Equal(t, "B", NoteName(-1))
	assert.Equal(t, "C", NoteName(12))
}

func TestParseScaleName(t *testing.T) {
	s, ok := ParseScaleName("mixolydian")
	assert.True(t, ok)
	assert.Equal(t, Mixolydian, s)

	_, ok = ParseScaleName("not-a-scale")
	assert.False(t, ok)
}

func TestChordByName(t *testing.T) {
	c, ok := ChordByName("minor 7th")
	assert.True(t, ok)
	assert.Equal(t, []int{0, 3, 7, 10}, c.Offsets)

	_, ok = ChordByName("not-a-chord")
	assert.False(t, ok)
}

func TestChordCountIs40(t *testing.T) {
	assert.Equal(t, 40, ChordCount())
}

func TestChordByIndexOutOfRange(t *testing.T) {
	_, ok := ChordByIndex(-1)
	assert.False(t, ok)
	_, ok = ChordByIndex(ChordCount())
	assert.False(t, ok)
}

func TestChordNotes(t *testing.T) {
	c, ok := ChordByIndex(0)
	assert.True(t, ok)
	assert.Equal(t, "Major", c.Name)
	assert.Equal(t, []int{60, 64, 67}, ChordNotes(60, c))
}

func TestKeySignatureRoundTrip(t *testing.T) {
	bytes, ok := KeySignatureBytes("G")
	assert.True(t, ok)
	assert.Equal(t, [2]byte{1, 0}, bytes)

	name, ok := KeySignatureName(1, false)
	assert.True(t, ok)
	assert.Equal(t, "G", name)
}

func TestAnalyzeNotesRequiresEightNotes(t *testing.T) {
	notes := []int{60, 62, 64, 65, 67}
	assert.Nil(t, AnalyzeNotes(notes))
}

func TestAnalyzeNotesFindsCMajor(t *testing.T) {
	// Eight notes drawn only from the C major scale.
	notes := []int{60, 62, 64, 65, 67, 69, 71, 72}
	results := AnalyzeNotes(notes)
	assert.NotEmpty(t, results)
	found := false
	for _, r := range results {
		if r.Key == 0 && r.Scale == Major {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUpDownAreInverseOnScaleDegrees(t *testing.T) {
	up := Up(Major, 0)
	down := Down(Major, 0)
	// Only test starting points that are themselves in-scale (0,2,4,5,7,9,11):
	// Up(x) jumps to the next scale degree above x, and Down at that target
	// must land back exactly on x.
	for _, semitone := range []int{0, 2, 4, 5, 7, 9, 11} {
		target := ((semitone + up[semitone]) % 12 + 12) % 12
		back := ((target + down[target]) % 12 + 12) % 12
		assert.Equal(t, semitone, back)
	}
}
