// Package report renders an analysis as a human-readable walkthrough of
// each cracking stage.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/vigcrack/internal/vigenere"
)

const rule = "---\n"

// Build renders res as text.
func Build(res *vigenere.Result) string {
	var sb strings.Builder

	sb.WriteString("Clean cipher:\n\n")
	sb.WriteString(res.Normalized)
	sb.WriteString("\n")
	sb.WriteString(rule)

	if res.KasiskiCode != "" {
		sb.WriteString(fmt.Sprintf("Best Kasiski key length is: none (%s)\n", res.KasiskiCode))
	} else {
		sb.WriteString(fmt.Sprintf("Best Kasiski key length is: %d\n", res.KasiskiLength))
	}
	sb.WriteString(fmt.Sprintf("Index of coincidence gives a key length of: %d\n", res.CoincidenceLength))
	sb.WriteString(keyLengthLine(res))
	sb.WriteString(rule)

	sb.WriteString("Splitted cipher:\n\n")
	for i, column := range res.Columns {
		sb.WriteString("\t" + column + "\n")
		if i < len(res.Results) {
			r := res.Results[i]
			sb.WriteString(fmt.Sprintf("\tCaesar crack with score %.3f (key %c):\n", r.Score, r.KeyLetter))
			sb.WriteString("\t->\t" + r.Decoded + "\n")
		}
	}
	sb.WriteString(rule)

	sb.WriteString("Merged result:\n\n")
	sb.WriteString(res.Plaintext)
	sb.WriteString("\n")
	sb.WriteString(rule)

	sb.WriteString("Cleaned result:\n\n")
	sb.WriteString(res.FinalText)
	sb.WriteString("\n")
	sb.WriteString(rule)

	sb.WriteString("Key: " + res.Key + "\n")
	return sb.String()
}

// Write renders res to w.
func Write(w io.Writer, res *vigenere.Result) error {
	_, err := io.WriteString(w, Build(res))
	return err
}

func keyLengthLine(res *vigenere.Result) string {
	switch res.KeySource {
	case vigenere.SourceKey:
		return fmt.Sprintf("Using supplied key of length %d\n", res.KeyLength)
	case vigenere.SourceKeyLength:
		return fmt.Sprintf("Using supplied key length %d\n", res.KeyLength)
	}
	if res.Inconclusive {
		return fmt.Sprintf("Using key length %d (inconclusive: the text may be too short)\n", res.KeyLength)
	}
	return fmt.Sprintf("Using key length %d\n", res.KeyLength)
}

// BuildFailure renders a failed analysis as its code and message.
func BuildFailure(err error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analysis failed (%s):\n\n", vigenere.Code(err)))
	sb.WriteString(err.Error())
	sb.WriteString("\n")
	return sb.String()
}
