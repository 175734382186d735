package vigenere

import (
	"fmt"
	"strings"
)

// Restore maps plain, one letter per letter slot, back onto the layout of pm.
func Restore(pm PositionMap, plain string) (string, error) {
	if want := pm.Letters(); want != len(plain) {
		return "", fmt.Errorf("restore: position map has %d letter slots, plaintext has %d letters", want, len(plain))
	}

	var sb strings.Builder
	sb.Grow(len(pm))
	next := 0
	for _, slot := range pm {
		switch slot.Case {
		case PassThrough:
			sb.WriteString(slot.Raw)
		case Upper:
			sb.WriteByte(plain[next])
			next++
		case Lower:
			sb.WriteByte(plain[next] - 'A' + 'a')
			next++
		}
	}
	return sb.String(), nil
}

// Reconstruct re-interleaves the decoded columns, restores the original
// layout and assembles the key. It returns the final text and the key.
func Reconstruct(results []CaesarResult, pm PositionMap) (string, string, error) {
	decoded := make([]string, len(results))
	key := make([]byte, len(results))
	for i, r := range results {
		decoded[i] = r.Decoded
		key[i] = r.KeyLetter
	}
	final, err := Restore(pm, Interleave(decoded))
	if err != nil {
		return "", "", err
	}
	return final, string(key), nil
}
