package pipeline

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/vigcrack/internal/vigenere"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusAnalyzing JobStatus = "analyzing"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
	StatusReused    JobStatus = "reused"
)

// Terminal reports whether no further processing will happen.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusReused:
		return true
	}
	return false
}

// Mode selects how a document is analysed.
type Mode string

const (
	// ModeWhole analyses the document text as one ciphertext.
	ModeWhole Mode = "whole"
	// ModeSections analyses every section as its own ciphertext.
	ModeSections Mode = "sections"
)

// ParseMode maps a form value to a Mode; empty means whole.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeWhole:
		return ModeWhole, nil
	case ModeSections:
		return ModeSections, nil
	}
	return "", fmt.Errorf("unknown mode %q (want whole or sections)", s)
}

// JobOptions are the per-job analysis overrides. Zero fields use the
// service defaults.
type JobOptions struct {
	MinRepeat int    `json:"min_repeat,omitempty"`
	TopShifts int    `json:"top_shifts,omitempty"`
	KeyLength int    `json:"key_length,omitempty"`
	Key       string `json:"key,omitempty"`
}

// Apply overlays the job options on base.
func (o JobOptions) Apply(base vigenere.Options) vigenere.Options {
	if o.MinRepeat > 0 {
		base.MinRepeat = o.MinRepeat
	}
	if o.TopShifts > 0 {
		base.TopShifts = o.TopShifts
	}
	if o.KeyLength > 0 {
		base.KeyLength = o.KeyLength
	}
	if o.Key != "" {
		base.Key = o.Key
	}
	return base
}

// Job tracks the state of a single document analysis.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus  `json:"status"`
	Phase    string     `json:"phase"`
	Filename string     `json:"filename"`
	Title    string     `json:"title"`
	Mode     Mode       `json:"mode"`
	Options  JobOptions `json:"options"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *JobResult
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSections    int      `json:"total_sections"`
	SectionsAnalyzed int      `json:"sections_analyzed"`
	SectionsFailed   int      `json:"sections_failed"`
	Errors           []string `json:"errors"`
}

// JobResult is the outcome of a finished job. It is also the value kept
// in the remote result store.
type JobResult struct {
	ContentHash string          `json:"content_hash"`
	Filename    string          `json:"filename"`
	Title       string          `json:"title"`
	Mode        Mode            `json:"mode"`
	Sections    []SectionResult `json:"sections"`
}

// SectionResult is the analysis of one ciphertext unit.
type SectionResult struct {
	Title  string           `json:"title,omitempty"`
	Page   int              `json:"page,omitempty"`
	Result *vigenere.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Code   string           `json:"code,omitempty"`
}

// NewJob builds a queued job with a fresh ID.
func NewJob(filename, title string, mode Mode, opts JobOptions, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          NewJobID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Title:       title,
		Mode:        mode,
		Options:     opts,
		ContentHash: DedupKey(data, mode, opts),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	byHash map[string]string
	ttl    time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs:   make(map[string]*Job),
		byHash: make(map[string]string),
		ttl:    ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	if job.ContentHash != "" {
		s.byHash[job.ContentHash] = job.ID
	}
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// FindByHash returns the latest job for a content hash that has not
// failed, or nil.
func (s *JobStore) FindByHash(hash string) *Job {
	s.mu.Lock()
	id, ok := s.byHash[hash]
	job := s.jobs[id]
	s.mu.Unlock()
	if !ok || job == nil {
		return nil
	}
	if job.Snapshot().Status == StatusFailed {
		return nil
	}
	return job
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
			if s.byHash[job.ContentHash] == id {
				delete(s.byHash, job.ContentHash)
			}
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrSectionsAnalyzed counts one analysed section.
func (j *Job) IncrSectionsAnalyzed(failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsAnalyzed++
	if failed {
		j.Progress.SectionsFailed++
	}
	j.UpdatedAt = time.Now()
}

// SetTotalSections records how many sections will be analysed.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSections = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult attaches the finished result and drops the upload bytes.
func (j *Job) SetResult(r *JobResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the finished result, or nil while the job is running.
func (j *Job) Result() *JobResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	Phase       string     `json:"phase"`
	Filename    string     `json:"filename"`
	Title       string     `json:"title"`
	Mode        Mode       `json:"mode"`
	Options     JobOptions `json:"options"`
	ContentHash string     `json:"content_hash"`
	Progress    Progress   `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Mode:        j.Mode,
		Options:     j.Options,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalSections:    j.Progress.TotalSections,
			SectionsAnalyzed: j.Progress.SectionsAnalyzed,
			SectionsFailed:   j.Progress.SectionsFailed,
			Errors:           errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// DedupKey hashes the upload together with everything that changes the
// analysis outcome. The key is quoted so it cannot run into the data.
func DedupKey(data []byte, mode Mode, opts JobOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%q|", mode, opts.MinRepeat, opts.TopShifts, opts.KeyLength, strings.ToUpper(opts.Key))
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}
