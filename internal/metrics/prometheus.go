package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// analysesTotal counts analyses by outcome and error code.
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigcrack_analyses_total",
		Help: "Total ciphertext analyses by result and error code",
	}, []string{"result", "code"})

	// analysisDuration tracks end-to-end analysis latency.
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vigcrack_analysis_duration_seconds",
		Help:    "Analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"source"})

	// analysisLetters tracks the normalized stream length per analysis.
	analysisLetters = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vigcrack_analysis_letters",
		Help:    "Letters in the normalized stream per analysis",
		Buckets: prometheus.ExponentialBuckets(16, 4, 8),
	})

	// keyLength tracks the key length used for decryption.
	keyLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vigcrack_key_length",
		Help:    "Key length chosen per successful analysis",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 12, 16, 20},
	})

	// estimateDisagreements counts analyses where the two estimators differ.
	estimateDisagreements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vigcrack_estimate_disagreements_total",
		Help: "Analyses where Kasiski and coincidence key lengths differ",
	})

	// jobsTotal counts upload jobs by terminal status.
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigcrack_jobs_total",
		Help: "Total upload jobs by terminal status",
	}, []string{"status"})

	// queueDepth reports the number of queued jobs.
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vigcrack_job_queue_depth",
		Help: "Jobs waiting for a worker",
	})
)

// Analysis describes one finished analysis for the Prometheus collectors.
type Analysis struct {
	Source            string // "api" or "job"
	Duration          time.Duration
	Letters           int
	KasiskiLength     int
	CoincidenceLength int
	KeyLength         int
	Code              string // Empty on success
}

// ObserveAnalysis records a finished analysis.
func ObserveAnalysis(a Analysis) {
	analysisDuration.WithLabelValues(a.Source).Observe(a.Duration.Seconds())
	analysisLetters.Observe(float64(a.Letters))

	if a.Code != "" {
		analysesTotal.WithLabelValues("error", a.Code).Inc()
		return
	}
	analysesTotal.WithLabelValues("ok", "").Inc()
	keyLength.Observe(float64(a.KeyLength))
	if a.KasiskiLength > 0 && a.CoincidenceLength > 0 && a.KasiskiLength != a.CoincidenceLength {
		estimateDisagreements.Inc()
	}
}

// ObserveJob records a job reaching a terminal status.
func ObserveJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

// SetQueueDepth reports the current job queue length.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}
