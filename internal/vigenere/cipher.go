package vigenere

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseKey upper-cases key and rejects anything that is not an ASCII letter.
func ParseKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	buf := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case 'A' <= c && c <= 'Z':
			buf[i] = c
		case 'a' <= c && c <= 'z':
			buf[i] = c - 'a' + 'A'
		default:
			return "", fmt.Errorf("%w: %q is not a letter", ErrInvalidKey, c)
		}
	}
	return string(buf), nil
}

// Encrypt applies the repeating key to the letters of text. Case and
// non-letters are kept; the key only advances on letters.
func Encrypt(text, key string) (string, error) {
	return transform(text, key, 1)
}

// Decrypt reverses Encrypt.
func Decrypt(text, key string) (string, error) {
	return transform(text, key, -1)
}

func transform(text, key string, dir int) (string, error) {
	k, err := ParseKey(key)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(text))
	pos := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		raw := text[i : i+size]
		i += size

		var base rune
		switch {
		case 'A' <= r && r <= 'Z':
			base = 'A'
		case 'a' <= r && r <= 'z':
			base = 'a'
		default:
			sb.WriteString(raw)
			continue
		}
		shift := dir * int(k[pos%len(k)]-'A')
		pos++
		sb.WriteRune(base + rune((int(r-base)+shift+alphabetSize)%alphabetSize))
	}
	return sb.String(), nil
}
