package vigenere

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

const alphabetSize = 26

// FrequencyTable holds the expected relative frequency of each letter, indexed A..Z.
type FrequencyTable [alphabetSize]float64

// English returns the reference English single-letter frequency table.
func English() FrequencyTable {
	return FrequencyTable{
		.0812, .0149, .0271, .0432, .120, .023, .0203, // A-G
		.0592, .0731, .001, .0069, .0398, .0261, .0695, // H-N
		.0768, .0182, .0011, .0602, .0628, .091, .0288, // O-U
		.0111, .0209, .0017, .0211, .0007, // V-Z
	}
}

// Sum returns the total of all letter frequencies.
func (t FrequencyTable) Sum() float64 {
	var s float64
	for _, f := range t {
		s += f
	}
	return s
}

// IsZero reports whether the table is unset.
func (t FrequencyTable) IsZero() bool {
	return t == FrequencyTable{}
}

// LoadTable parses a letter -> frequency mapping in YAML or JSON.
// Letters are case-insensitive; absent letters count as zero.
func LoadTable(r io.Reader) (FrequencyTable, error) {
	var raw map[string]float64
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return FrequencyTable{}, fmt.Errorf("%w: empty document", ErrInvalidTable)
		}
		return FrequencyTable{}, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	var t FrequencyTable
	for k, v := range raw {
		letter := strings.ToUpper(strings.TrimSpace(k))
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			return FrequencyTable{}, fmt.Errorf("%w: key %q is not a letter", ErrInvalidTable, k)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return FrequencyTable{}, fmt.Errorf("%w: frequency for %s is %v", ErrInvalidTable, letter, v)
		}
		t[letter[0]-'A'] = v
	}

	if sum := t.Sum(); sum < 0.9 || sum > 1.1 {
		return FrequencyTable{}, fmt.Errorf("%w: frequencies sum to %.4f", ErrInvalidTable, sum)
	}
	return t, nil
}
