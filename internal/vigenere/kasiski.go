package vigenere

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// DefaultMinRepeat is the substring length used by the Kasiski search.
const DefaultMinRepeat = 4

// KeyLengthCandidate is a key length with the number of offsets it divides.
type KeyLengthCandidate struct {
	Length int `json:"length"`
	Votes  int `json:"votes"`
}

// Kasiski votes for every divisor greater than one of every repetition offset
// and returns the candidates ranked by votes, larger length first on ties.
func Kasiski(pairs []OffsetPair) ([]KeyLengthCandidate, error) {
	votes := make(map[int]int)
	vote := func(f int) {
		if f > 1 {
			votes[f]++
		}
	}

	for _, p := range pairs {
		d := p.Offset()
		for f := 1; f*f <= d; f++ {
			if d%f != 0 {
				continue
			}
			vote(f)
			if g := d / f; g != f {
				vote(g)
			}
		}
	}
	if len(votes) == 0 {
		return nil, ErrNoRepetitions
	}

	ranked := make([]KeyLengthCandidate, 0, len(votes))
	for length, n := range votes {
		ranked = append(ranked, KeyLengthCandidate{Length: length, Votes: n})
	}
	slices.SortFunc(ranked, compareCandidates)
	return ranked, nil
}

// compareCandidates orders by votes descending, then length descending.
func compareCandidates(a, b KeyLengthCandidate) int {
	if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
		return c
	}
	return cmp.Compare(b.Length, a.Length)
}

// KasiskiLength runs the repetition search and the divisor vote on stream.
// It needs at least two start positions for substrings of minLen letters.
func KasiskiLength(ctx context.Context, finder RepetitionFinder, stream string, minLen int) (int, []KeyLengthCandidate, error) {
	if minLen <= 0 {
		minLen = DefaultMinRepeat
	}
	if len(stream) <= minLen {
		return 0, nil, fmt.Errorf("%w: %d letters, repetition search needs more than %d", ErrInsufficientData, len(stream), minLen)
	}

	pairs, err := finder.Find(ctx, stream, minLen)
	if err != nil {
		return 0, nil, err
	}
	ranked, err := Kasiski(pairs)
	if err != nil {
		return 0, nil, err
	}
	return ranked[0].Length, ranked, nil
}
