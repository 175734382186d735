package vigenere

import (
	"strings"
	"unicode/utf8"
)

// Case records how a character of the raw text is reproduced.
type Case uint8

const (
	// PassThrough slots emit the original rune unchanged.
	PassThrough Case = iota
	Upper
	Lower
)

// Slot is one entry of a PositionMap. Raw holds the verbatim bytes of a
// pass-through slot, so invalid UTF-8 survives a round trip.
type Slot struct {
	Rune rune
	Case Case
	Raw  string
}

// PositionMap has one slot per rune of the raw text; each byte of an
// invalid UTF-8 sequence gets its own slot.
type PositionMap []Slot

// Letters returns the number of letter slots.
func (pm PositionMap) Letters() int {
	n := 0
	for _, s := range pm {
		if s.Case != PassThrough {
			n++
		}
	}
	return n
}

// Normalize keeps the ASCII letters of raw, upper-cased, and records
// where every other rune sat so the layout can be restored later.
func Normalize(raw string) (string, PositionMap) {
	var sb strings.Builder
	sb.Grow(len(raw))
	pm := make(PositionMap, 0, len(raw))

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		switch {
		case 'A' <= r && r <= 'Z':
			sb.WriteByte(byte(r))
			pm = append(pm, Slot{Rune: r, Case: Upper})
		case 'a' <= r && r <= 'z':
			sb.WriteByte(byte(r - 'a' + 'A'))
			pm = append(pm, Slot{Rune: r, Case: Lower})
		default:
			pm = append(pm, Slot{Rune: r, Case: PassThrough, Raw: raw[i : i+size]})
		}
		i += size
	}
	return sb.String(), pm
}

func isUpperLetter(b byte) bool { return 'A' <= b && b <= 'Z' }
