package vigenere

import (
	"fmt"
	"strings"
)

// SplitColumns deinterleaves stream into k columns; column c holds
// stream[c], stream[c+k], stream[c+2k], ...
func SplitColumns(stream string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, k)
	}
	builders := make([]strings.Builder, k)
	for i := 0; i < len(stream); i++ {
		builders[i%k].WriteByte(stream[i])
	}
	columns := make([]string, k)
	for c := range builders {
		columns[c] = builders[c].String()
	}
	return columns, nil
}

// Interleave merges columns round-robin. Shorter columns stop contributing
// once exhausted.
func Interleave(columns []string) string {
	total, longest := 0, 0
	for _, c := range columns {
		total += len(c)
		longest = max(longest, len(c))
	}

	var sb strings.Builder
	sb.Grow(total)
	for row := 0; row < longest; row++ {
		for _, c := range columns {
			if row < len(c) {
				sb.WriteByte(c[row])
			}
		}
	}
	return sb.String()
}
