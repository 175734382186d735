package vigenere

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// loadSample returns a public-domain English passage of about 1700 letters.
func loadSample(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/dickens.txt")
	require.NoError(t, err)
	return string(b)
}

func mustEncrypt(t *testing.T, text, key string) string {
	t.Helper()
	out, err := Encrypt(text, key)
	require.NoError(t, err)
	return out
}
