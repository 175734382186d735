package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/vigcrack/internal/metrics"
	"github.com/dgallion1/vigcrack/internal/parser"
	"github.com/dgallion1/vigcrack/internal/resultstore"
	"github.com/dgallion1/vigcrack/internal/vigenere"
)

// Worker processes a single document job.
type Worker struct {
	base  vigenere.Options
	store *resultstore.Client
	stats *metrics.LatencyStats
	log   *slog.Logger

	pdfFallback bool
}

func NewWorker(base vigenere.Options, store *resultstore.Client, stats *metrics.LatencyStats, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		base:        base,
		store:       store,
		stats:       stats,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// unit is one ciphertext handed to the analyzer.
type unit struct {
	title string
	page  int
	text  string
}

// Process parses the uploaded document, analyses it and publishes the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "mode", job.Mode)
	start := time.Now()

	// Phase 1: Reuse a stored result for identical content and options.
	if w.store != nil {
		var stored JobResult
		found, err := w.store.GetResult(ctx, job.ContentHash, &stored)
		if err != nil {
			log.Warn("result store lookup failed, proceeding", "error", err)
		} else if found {
			log.Info("reusing stored result", "content_hash", job.ContentHash)
			job.SetResult(&stored)
			w.finish(job, StatusReused)
			return
		}
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		w.fail(job, "parsing")
		return
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		w.fail(job, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}

	units := analysisUnits(doc, job.Mode)
	if len(units) == 0 {
		log.Warn("no text extracted")
		job.AddError("no extractable content")
		w.fail(job, "parsing")
		return
	}
	job.SetTotalSections(len(units))
	log.Info("parsed document", "sections", len(units))

	// Phase 3: Analyse each unit.
	job.SetStatus(StatusAnalyzing, "analyzing")
	analyzer := vigenere.NewAnalyzer(job.Options.Apply(w.base))
	result := &JobResult{
		ContentHash: job.ContentHash,
		Filename:    job.Filename,
		Title:       doc.Title,
		Mode:        job.Mode,
		Sections:    make([]SectionResult, 0, len(units)),
	}

	failed := 0
	for i, u := range units {
		res, err := w.analyze(ctx, analyzer, u.text)
		if err != nil && !vigenere.IsAnalysisError(err) {
			log.Error("analysis aborted", "section", i, "error", err)
			job.AddError(fmt.Sprintf("section %d: %s", i, err))
			w.fail(job, "analyzing")
			return
		}

		sr := SectionResult{Title: u.title, Page: u.page, Result: res}
		if err != nil {
			failed++
			sr.Error = err.Error()
			sr.Code = vigenere.Code(err)
			job.AddError(fmt.Sprintf("section %d: %s", i, err))
			log.Info("section not cracked", "section", i, "code", sr.Code)
		}
		result.Sections = append(result.Sections, sr)
		job.IncrSectionsAnalyzed(err != nil)
	}

	status := StatusCompleted
	switch {
	case failed == len(units):
		status = StatusFailed
	case failed > 0:
		status = StatusPartial
	}
	job.SetResult(result)

	// Phase 4: Publish. A failed store write leaves the local result intact.
	if w.store != nil && status != StatusFailed {
		job.SetStatus(StatusStoring, "storing")
		if err := w.store.PutResult(ctx, job.ContentHash, result); err != nil {
			log.Error("result store write failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
		}
	}

	log.Info("analysis complete",
		"status", status,
		"sections", len(units),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.finish(job, status)
}

// analyze runs one analysis and records its latency and outcome.
func (w *Worker) analyze(ctx context.Context, a *vigenere.Analyzer, text string) (*vigenere.Result, error) {
	return RunAnalysis(ctx, a, text, w.stats, "job")
}

// RunAnalysis analyses text and records the latency sample and the
// Prometheus observation under source.
func RunAnalysis(ctx context.Context, a *vigenere.Analyzer, text string, stats *metrics.LatencyStats, source string) (*vigenere.Result, error) {
	start := time.Now()
	res, err := a.Analyze(ctx, text)
	elapsed := time.Since(start)

	stream, _ := vigenere.Normalize(text)
	stats.Record(elapsed.Milliseconds(), len(stream))

	obs := metrics.Analysis{
		Source:   source,
		Duration: elapsed,
		Letters:  len(stream),
		Code:     vigenere.Code(err),
	}
	if res != nil {
		obs.KasiskiLength = res.KasiskiLength
		obs.CoincidenceLength = res.CoincidenceLength
		obs.KeyLength = res.KeyLength
	}
	if errors.Is(err, context.Canceled) {
		obs.Code = "canceled"
	}
	metrics.ObserveAnalysis(obs)
	return res, err
}

func (w *Worker) fail(job *Job, phase string) {
	job.SetFileData(nil)
	job.SetStatus(StatusFailed, phase)
	metrics.ObserveJob(string(StatusFailed))
}

func (w *Worker) finish(job *Job, status JobStatus) {
	if status == StatusFailed {
		w.fail(job, "analyzing")
		return
	}
	job.SetStatus(status, "done")
	metrics.ObserveJob(string(status))
}

// analysisUnits turns a document into the ciphertexts to crack.
func analysisUnits(doc *parser.Document, mode Mode) []unit {
	if mode == ModeSections {
		units := make([]unit, 0, len(doc.Sections))
		for _, s := range doc.Sections {
			units = append(units, unit{title: s.Title, page: s.Page, text: s.Text})
		}
		return units
	}
	text := doc.Text()
	if text == "" {
		return nil
	}
	return []unit{{title: doc.Title, text: text}}
}
