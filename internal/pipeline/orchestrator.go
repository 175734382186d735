package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/vigcrack/internal/config"
	"github.com/dgallion1/vigcrack/internal/metrics"
	"github.com/dgallion1/vigcrack/internal/resultstore"
	"github.com/dgallion1/vigcrack/internal/vigenere"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("orchestrator stopped")

// Orchestrator manages the document analysis pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	base  vigenere.Options
	store *resultstore.Client
	stats *metrics.LatencyStats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex // guards stopped and the close of queue
	stopped bool
}

// NewOrchestrator creates the pipeline. store may be nil.
func NewOrchestrator(cfg config.Config, base vigenere.Options, store *resultstore.Client, stats *metrics.LatencyStats, log *slog.Logger) *Orchestrator {
	if stats == nil {
		stats = metrics.NewLatencyStats(time.Hour)
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		base:  base,
		store: store,
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.base, o.store, o.stats, o.log, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.SetQueueDepth(len(o.queue))
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "shutting_down")
		metrics.ObserveJob(string(StatusFailed))
		return ErrStopped
	}
	select {
	case o.queue <- job:
		metrics.SetQueueDepth(len(o.queue))
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		metrics.ObserveJob(string(StatusFailed))
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// FindDuplicate returns a live job for the same content and options, or nil.
func (o *Orchestrator) FindDuplicate(contentHash string) *Job {
	return o.jobs.FindByHash(contentHash)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// TrackedJobs returns the number of jobs held in memory.
func (o *Orchestrator) TrackedJobs() int {
	return o.jobs.Len()
}

// Stats returns the rolling analysis latency stats shared with the API.
func (o *Orchestrator) Stats() *metrics.LatencyStats {
	return o.stats
}

// Analyze runs a synchronous analysis with per-request overrides, sharing
// the job workers' statistics.
func (o *Orchestrator) Analyze(ctx context.Context, opts JobOptions, text string) (*vigenere.Result, error) {
	a := vigenere.NewAnalyzer(opts.Apply(o.base))
	return RunAnalysis(ctx, a, text, o.stats, "api")
}
