package vigenere

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// CaesarResult is one decoding hypothesis for a column.
type CaesarResult struct {
	// Score is the L1 distance to the reference table; lower is better.
	Score     float64
	Decoded   string
	KeyLetter byte
}

func (r CaesarResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Score     float64 `json:"score"`
		Decoded   string  `json:"decoded"`
		KeyLetter string  `json:"key_letter"`
	}{r.Score, r.Decoded, string(r.KeyLetter)})
}

func (r *CaesarResult) UnmarshalJSON(b []byte) error {
	var v struct {
		Score     float64 `json:"score"`
		Decoded   string  `json:"decoded"`
		KeyLetter string  `json:"key_letter"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if len(v.KeyLetter) != 1 || !isUpperLetter(v.KeyLetter[0]) {
		return fmt.Errorf("key letter %q: %w", v.KeyLetter, ErrInvalidKey)
	}
	*r = CaesarResult{Score: v.Score, Decoded: v.Decoded, KeyLetter: v.KeyLetter[0]}
	return nil
}

// CrackCaesar tries all 26 shifts on column and returns the best fit to table.
func CrackCaesar(column string, table FrequencyTable) (CaesarResult, error) {
	ranked, err := RankCaesar(column, table)
	if err != nil {
		return CaesarResult{}, err
	}
	return ranked[0], nil
}

// RankCaesar returns all 26 decodings of column, best first. Ties on score
// go to the lexicographically smaller decoding, then the smaller key letter.
func RankCaesar(column string, table FrequencyTable) ([]CaesarResult, error) {
	if err := checkColumn(column); err != nil {
		return nil, err
	}
	ranked := make([]CaesarResult, 0, alphabetSize)
	for shift := 0; shift < alphabetSize; shift++ {
		ranked = append(ranked, decodeColumn(column, byte('A'+shift), table))
	}
	slices.SortFunc(ranked, compareCaesar)
	return ranked, nil
}

// DecodeColumn decodes column with a known key letter and scores the result.
func DecodeColumn(column string, key byte, table FrequencyTable) (CaesarResult, error) {
	if err := checkColumn(column); err != nil {
		return CaesarResult{}, err
	}
	if !isUpperLetter(key) {
		return CaesarResult{}, fmt.Errorf("%w: key letter %q", ErrInvalidKey, key)
	}
	return decodeColumn(column, key, table), nil
}

func compareCaesar(a, b CaesarResult) int {
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	if c := strings.Compare(a.Decoded, b.Decoded); c != 0 {
		return c
	}
	return cmp.Compare(a.KeyLetter, b.KeyLetter)
}

func checkColumn(column string) error {
	if column == "" {
		return ErrEmptyColumn
	}
	for i := 0; i < len(column); i++ {
		if !isUpperLetter(column[i]) {
			return fmt.Errorf("column holds non-letter %q at %d", column[i], i)
		}
	}
	return nil
}

// decodeColumn undoes the shift that key applied during encryption.
func decodeColumn(column string, key byte, table FrequencyTable) CaesarResult {
	shift := key - 'A'
	buf := make([]byte, len(column))
	for i := 0; i < len(column); i++ {
		buf[i] = 'A' + (column[i]-'A'+alphabetSize-shift)%alphabetSize
	}
	return CaesarResult{
		Score:     fitScore(buf, table),
		Decoded:   string(buf),
		KeyLetter: key,
	}
}

// fitScore is the L1 distance between the letter distribution of text and table.
func fitScore(text []byte, table FrequencyTable) float64 {
	var counts [alphabetSize]int
	for _, b := range text {
		counts[b-'A']++
	}
	size := float64(len(text))
	var score float64
	for i, expected := range table {
		score += math.Abs(expected - float64(counts[i])/size)
	}
	return score
}
