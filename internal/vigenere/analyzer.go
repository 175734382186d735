package vigenere

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// reportedCandidates caps the Kasiski ranking kept on a Result.
const reportedCandidates = 10

// Options tunes an Analyzer. The zero value uses the defaults.
type Options struct {
	// MinRepeat is the Kasiski substring length (default 4).
	MinRepeat int
	// TopShifts is how many ranked coincidence shifts are GCD-reduced (default 5).
	TopShifts int
	// Table is the reference letter distribution (default English).
	Table FrequencyTable
	// Finder performs the repetition search (default BruteForceFinder).
	Finder RepetitionFinder
	// Workers bounds concurrent column cracking; <= 1 runs serially.
	Workers int

	// KeyLength skips the estimate and splits with this length.
	KeyLength int
	// Key skips both the estimate and the shift search.
	Key string
}

// Result is the outcome of one analysis.
type Result struct {
	Normalized string `json:"normalized"`

	KasiskiLength     int                  `json:"kasiski_length"`
	KasiskiCandidates []KeyLengthCandidate `json:"kasiski_candidates,omitempty"`
	KasiskiErr        error                `json:"-"`
	KasiskiCode       string               `json:"kasiski_error,omitempty"`

	CoincidenceLength  int          `json:"coincidence_length"`
	CoincidenceRanking []ShiftScore `json:"coincidence_ranking,omitempty"`

	// KeyLength is the length the stream was split with.
	KeyLength int `json:"key_length"`
	// KeySource says where KeyLength came from.
	KeySource KeySource `json:"key_source"`
	// Inconclusive is set when the estimated key length is 1.
	Inconclusive bool `json:"inconclusive"`

	Columns   []string       `json:"columns"`
	Results   []CaesarResult `json:"results"`
	Key       string         `json:"key"`
	Plaintext string         `json:"plaintext"`
	FinalText string         `json:"final_text"`
}

// KeySource names the origin of the key length used for splitting.
type KeySource string

const (
	SourceCoincidence KeySource = "coincidence"
	SourceKeyLength   KeySource = "key_length"
	SourceKey         KeySource = "key"
)

// Analyzer runs the full cryptanalysis pipeline.
type Analyzer struct {
	opts Options
}

func NewAnalyzer(opts Options) *Analyzer {
	if opts.MinRepeat <= 0 {
		opts.MinRepeat = DefaultMinRepeat
	}
	if opts.TopShifts <= 0 {
		opts.TopShifts = DefaultTopShifts
	}
	if opts.Table.IsZero() {
		opts.Table = English()
	}
	if opts.Finder == nil {
		opts.Finder = BruteForceFinder{Workers: opts.Workers}
	}
	return &Analyzer{opts: opts}
}

// Analyze cracks raw. A Kasiski failure is recorded on the result; a failed
// key-length estimate is fatal unless a key or key length was supplied.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Result, error) {
	stream, pm := Normalize(raw)
	res := &Result{Normalized: stream}

	var key string
	if a.opts.Key != "" {
		k, err := ParseKey(a.opts.Key)
		if err != nil {
			return nil, err
		}
		key = k
	}

	kLen, candidates, err := KasiskiLength(ctx, a.opts.Finder, stream, a.opts.MinRepeat)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	res.KasiskiLength = kLen
	res.KasiskiCandidates = candidates[:min(len(candidates), reportedCandidates)]
	res.KasiskiErr = err
	res.KasiskiCode = Code(err)

	cLen, ranking, cErr := Coincidence(ctx, stream, a.opts.TopShifts)
	if cErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	res.CoincidenceLength = cLen
	res.CoincidenceRanking = ranking[:min(len(ranking), a.opts.TopShifts)]

	switch {
	case key != "":
		res.KeyLength, res.KeySource = len(key), SourceKey
	case a.opts.KeyLength != 0:
		res.KeyLength, res.KeySource = a.opts.KeyLength, SourceKeyLength
	case cErr != nil:
		return nil, fmt.Errorf("estimate key length: %w", cErr)
	default:
		res.KeyLength, res.KeySource = cLen, SourceCoincidence
		res.Inconclusive = cLen <= 1
	}

	columns, err := SplitColumns(stream, res.KeyLength)
	if err != nil {
		return nil, err
	}
	res.Columns = columns

	results, err := a.crackColumns(ctx, columns, key)
	if err != nil {
		return nil, err
	}
	res.Results = results

	decoded := make([]string, len(results))
	for i, r := range results {
		decoded[i] = r.Decoded
	}
	res.Plaintext = Interleave(decoded)

	res.FinalText, res.Key, err = Reconstruct(results, pm)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// crackColumns solves every column, concurrently when Workers > 1. The
// lowest-indexed column failure is reported regardless of scheduling.
func (a *Analyzer) crackColumns(ctx context.Context, columns []string, key string) ([]CaesarResult, error) {
	results := make([]CaesarResult, len(columns))
	errs := make([]error, len(columns))

	solve := func(i int) {
		if key != "" {
			results[i], errs[i] = DecodeColumn(columns[i], key[i], a.opts.Table)
			return
		}
		results[i], errs[i] = CrackCaesar(columns[i], a.opts.Table)
	}

	if a.opts.Workers <= 1 {
		for i := range columns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			solve(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.opts.Workers)
		for i := range columns {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				solve(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for i, err := range errs {
		if err != nil {
			return nil, &ColumnError{Index: i, Err: err}
		}
	}
	return results, nil
}

// IsAnalysisError reports whether err is one of the input-shape failures
// of the analysis, as opposed to cancellation or an internal fault.
func IsAnalysisError(err error) bool {
	for _, target := range []error{ErrInsufficientData, ErrNoRepetitions, ErrInvalidKeyLength, ErrEmptyColumn, ErrInvalidKey} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
