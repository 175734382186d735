package vigenere

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// DefaultTopShifts is how many top-ranked shifts are GCD-reduced.
const DefaultTopShifts = 5

// ShiftScore counts the positions where the stream matches itself shifted by Shift.
type ShiftScore struct {
	Shift   int `json:"shift"`
	Matches int `json:"matches"`
}

// Coincidence estimates the key length from self-alignment coincidences.
// Shifts 1..n-2 are ranked by matches then shift, both descending, and the
// top shifts are reduced by GCD. The full ranking is returned as well.
// ctx is checked once per shift.
func Coincidence(ctx context.Context, stream string, top int) (int, []ShiftScore, error) {
	n := len(stream)
	if n < 3 {
		return 0, nil, fmt.Errorf("%w: %d letters, coincidence analysis needs at least 3", ErrInsufficientData, n)
	}
	if top <= 0 {
		top = DefaultTopShifts
	}

	ranking := make([]ShiftScore, 0, n-2)
	for s := 1; s <= n-2; s++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		matches := 0
		for i := 0; i+s < n; i++ {
			if stream[i] == stream[i+s] {
				matches++
			}
		}
		ranking = append(ranking, ShiftScore{Shift: s, Matches: matches})
	}
	slices.SortFunc(ranking, compareShifts)

	top = min(top, len(ranking))
	g := 0
	for _, sc := range ranking[:top] {
		g = gcd(g, sc.Shift)
	}
	return g, ranking, nil
}

// compareShifts orders by matches descending, then shift descending.
func compareShifts(a, b ShiftScore) int {
	if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
		return c
	}
	return cmp.Compare(b.Shift, a.Shift)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
