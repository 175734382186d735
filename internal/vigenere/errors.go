package vigenere

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means the stream is too short for a key-length estimate.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoRepetitions means the Kasiski search found nothing to vote on.
	ErrNoRepetitions = errors.New("no repetitions found")
	// ErrInvalidKeyLength is returned for a key length below 1.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrEmptyColumn is returned when a column with no letters reaches the Caesar cracker.
	ErrEmptyColumn = errors.New("empty column")
	// ErrInvalidKey is returned for a supplied key with no letters or with non-letters.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidTable is returned by LoadTable for malformed frequency tables.
	ErrInvalidTable = errors.New("invalid frequency table")
)

// ColumnError reports which column failed during cracking.
type ColumnError struct {
	Index int
	Err   error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %d: %v", e.Index, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// Code returns a stable machine-readable code for analysis errors.
// Unknown errors map to "internal".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrNoRepetitions):
		return "no_repetitions"
	case errors.Is(err, ErrInvalidKeyLength):
		return "invalid_key_length"
	case errors.Is(err, ErrEmptyColumn):
		return "empty_column"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrInvalidTable):
		return "invalid_table"
	default:
		return "internal"
	}
}
