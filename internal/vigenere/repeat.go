package vigenere

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// OffsetPair identifies two equal substrings starting at I and J (I < J).
type OffsetPair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Offset is the distance between the two occurrences.
func (p OffsetPair) Offset() int { return p.J - p.I }

// RepetitionFinder produces every pair of equal minLen-substrings of stream,
// ordered by (I, J). Implementations must agree exactly on the output.
type RepetitionFinder interface {
	Find(ctx context.Context, stream string, minLen int) ([]OffsetPair, error)
}

// BruteForceFinder compares every pair of start positions.
// With Workers > 1 the rows are compared concurrently.
type BruteForceFinder struct {
	Workers int
}

func (f BruteForceFinder) Find(ctx context.Context, stream string, minLen int) ([]OffsetPair, error) {
	if minLen <= 0 || len(stream) < minLen {
		return nil, nil
	}
	last := len(stream) - minLen

	if f.Workers <= 1 {
		var pairs []OffsetPair
		for i := 0; i < last; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pairs = appendRow(pairs, stream, minLen, i, last)
		}
		return pairs, nil
	}

	rows := make([][]OffsetPair, last)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Workers)
	for i := 0; i < last; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = appendRow(nil, stream, minLen, i, last)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []OffsetPair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}
	return pairs, nil
}

func appendRow(pairs []OffsetPair, stream string, minLen, i, last int) []OffsetPair {
	head := stream[i : i+minLen]
	for j := i + 1; j <= last; j++ {
		if stream[j:j+minLen] == head {
			pairs = append(pairs, OffsetPair{I: i, J: j})
		}
	}
	return pairs
}

// IndexedFinder buckets start positions by substring and pairs up each bucket.
// It returns the same pairs as BruteForceFinder in roughly linear time for
// text without heavy repetition.
type IndexedFinder struct{}

func (IndexedFinder) Find(ctx context.Context, stream string, minLen int) ([]OffsetPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if minLen <= 0 || len(stream) < minLen {
		return nil, nil
	}
	last := len(stream) - minLen

	buckets := make(map[string][]int)
	for i := 0; i <= last; i++ {
		s := stream[i : i+minLen]
		buckets[s] = append(buckets[s], i)
	}

	var pairs []OffsetPair
	for _, starts := range buckets {
		if len(starts) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for a := 0; a < len(starts); a++ {
			for b := a + 1; b < len(starts); b++ {
				pairs = append(pairs, OffsetPair{I: starts[a], J: starts[b]})
			}
		}
	}

	slices.SortFunc(pairs, func(x, y OffsetPair) int {
		if c := cmp.Compare(x.I, y.I); c != 0 {
			return c
		}
		return cmp.Compare(x.J, y.J)
	})
	return pairs, nil
}
