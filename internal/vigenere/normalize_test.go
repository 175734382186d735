package vigenere

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DropsNonLettersAndUppercases(t *testing.T) {
	stream, pm := Normalize("Hello, World!")

	assert.Equal(t, "HELLOWORLD", stream)
	assert.Len(t, pm, 13)
	assert.Equal(t, 10, pm.Letters())
	assert.Equal(t, Slot{Rune: 'H', Case: Upper}, pm[0])
	assert.Equal(t, Slot{Rune: 'e', Case: Lower}, pm[1])
	assert.Equal(t, Slot{Rune: ',', Case: PassThrough, Raw: ","}, pm[5])
}

func TestNormalize_Empty(t *testing.T) {
	stream, pm := Normalize("")
	assert.Empty(t, stream)
	assert.Empty(t, pm)
}

func TestNormalize_NonASCIILettersPassThrough(t *testing.T) {
	stream, pm := Normalize("héllo wörld")
	assert.Equal(t, "HLLOWRLD", stream)
	assert.Equal(t, len([]rune("héllo wörld")), len(pm))
	assert.Equal(t, Slot{Rune: 'é', Case: PassThrough, Raw: "é"}, pm[1])
}

// Restoring the normalized stream itself must reproduce the raw text with
// ASCII letters upper-cased and everything else untouched.
func TestRestore_LeftInverseOfNormalize(t *testing.T) {
	upperASCII := func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}

	inputs := []string{
		"",
		"a",
		"!!!",
		"Lxfopvefrnhr",
		"Attack at dawn!",
		"Mixed CASE, with 1234 digits\nand\ttabs.",
		"héllo wörld — ünïcode",
		loadSample(t),
	}
	for _, raw := range inputs {
		stream, pm := Normalize(raw)
		require.Equal(t, len(stream), pm.Letters())

		got, err := Restore(pm, stream)
		require.NoError(t, err)
		assert.Equal(t, strings.Map(upperASCII, raw), got)
	}
}

func TestRestore_LengthMismatch(t *testing.T) {
	_, pm := Normalize("abc")
	_, err := Restore(pm, "AB")
	assert.Error(t, err)
}

func TestRestore_KeepsInvalidUTF8(t *testing.T) {
	raw := "ab\xffcd\xe2\x82"
	stream, pm := Normalize(raw)
	assert.Equal(t, "ABCD", stream)
	assert.Len(t, pm, 7)
	assert.Equal(t, "\xff", pm[2].Raw)

	got, err := Restore(pm, stream)
	require.NoError(t, err)
	assert.Equal(t, "AB\xffCD\xe2\x82", got)
}
