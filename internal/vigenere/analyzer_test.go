package vigenere

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SyntheticCiphers(t *testing.T) {
	sample := loadSample(t)
	a := NewAnalyzer(Options{})

	for _, key := range []string{"KEY", "LEMON", "CIPHER", "ORANGE", "DICKENS"} {
		t.Run(key, func(t *testing.T) {
			res, err := a.Analyze(context.Background(), mustEncrypt(t, sample, key))
			require.NoError(t, err)

			assert.Equal(t, len(key), res.KasiskiLength)
			assert.Equal(t, len(key), res.CoincidenceLength)
			assert.Equal(t, len(key), res.KeyLength)
			assert.Equal(t, SourceCoincidence, res.KeySource)
			assert.False(t, res.Inconclusive)
			assert.Equal(t, key, res.Key)
			assert.Equal(t, sample, res.FinalText)
			assert.Len(t, res.Results, len(key))
			assert.Len(t, res.CoincidenceRanking, DefaultTopShifts)
		})
	}
}

func TestAnalyze_ParallelMatchesSerial(t *testing.T) {
	cipher := mustEncrypt(t, loadSample(t), "CIPHER")

	serial, err := NewAnalyzer(Options{}).Analyze(context.Background(), cipher)
	require.NoError(t, err)
	parallel, err := NewAnalyzer(Options{Workers: 4, Finder: IndexedFinder{}}).Analyze(context.Background(), cipher)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestAnalyze_ToyExampleIsInconclusive(t *testing.T) {
	res, err := NewAnalyzer(Options{}).Analyze(context.Background(), "Lxfopvefrnhr")
	require.NoError(t, err)

	assert.Equal(t, "LXFOPVEFRNHR", res.Normalized)
	assert.ErrorIs(t, res.KasiskiErr, ErrNoRepetitions)
	assert.Equal(t, "no_repetitions", res.KasiskiCode)
	assert.Equal(t, 1, res.CoincidenceLength)
	assert.Equal(t, 1, res.KeyLength)
	assert.True(t, res.Inconclusive)
	assert.Len(t, res.FinalText, len("Lxfopvefrnhr"))
}

func TestAnalyze_ToyExampleWithSuppliedKey(t *testing.T) {
	res, err := NewAnalyzer(Options{Key: "lemon"}).Analyze(context.Background(), "Lxfopvefrnhr")
	require.NoError(t, err)

	assert.Equal(t, 5, res.KeyLength)
	assert.Equal(t, SourceKey, res.KeySource)
	assert.False(t, res.Inconclusive)
	assert.Equal(t, []string{"LVH", "XER", "FF", "OR", "PN"}, res.Columns)
	assert.Equal(t, "LEMON", res.Key)
	assert.Equal(t, "ATTACKATDAWN", res.Plaintext)
	assert.Equal(t, "Attackatdawn", res.FinalText)
}

func TestAnalyze_SuppliedKeyLength(t *testing.T) {
	cipher := mustEncrypt(t, loadSample(t), "LEMON")
	res, err := NewAnalyzer(Options{KeyLength: 5}).Analyze(context.Background(), cipher)
	require.NoError(t, err)
	assert.Equal(t, SourceKeyLength, res.KeySource)
	assert.Equal(t, "LEMON", res.Key)
}

func TestAnalyze_EmptyAndSingleCharacter(t *testing.T) {
	a := NewAnalyzer(Options{})
	for _, raw := range []string{"", "a", "?!"} {
		res, err := a.Analyze(context.Background(), raw)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrInsufficientData, "input %q", raw)
		assert.Equal(t, "insufficient_data", Code(err))
	}
}

func TestAnalyze_EmptyColumnFromLongKeyLength(t *testing.T) {
	_, err := NewAnalyzer(Options{KeyLength: 10}).Analyze(context.Background(), "abc def")
	require.ErrorIs(t, err, ErrEmptyColumn)

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, 6, colErr.Index)
}

func TestAnalyze_InvalidOverrides(t *testing.T) {
	_, err := NewAnalyzer(Options{KeyLength: -2}).Analyze(context.Background(), "attack at dawn")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = NewAnalyzer(Options{Key: "le mon"}).Analyze(context.Background(), "attack at dawn")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(Options{}).Analyze(ctx, mustEncrypt(t, loadSample(t), "KEY"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_DeadlineStopsKeyLengthEstimate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	stream := strings.Repeat("LXFOPVEFRNHR", 2000)
	res, err := NewAnalyzer(Options{Finder: IndexedFinder{}, Key: "LEMON"}).Analyze(ctx, stream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res)
}

func TestIsAnalysisError(t *testing.T) {
	assert.True(t, IsAnalysisError(&ColumnError{Index: 1, Err: ErrEmptyColumn}))
	assert.True(t, IsAnalysisError(ErrInsufficientData))
	assert.False(t, IsAnalysisError(context.Canceled))
	assert.False(t, IsAnalysisError(nil))
	assert.Equal(t, "internal", Code(context.Canceled))
}
