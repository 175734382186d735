package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/vigcrack/internal/vigenere"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64
	MaxTextBytes   int64

	// Analysis defaults
	MinRepeat       int
	TopShifts       int
	AnalysisWorkers int
	FrequencyTable  string // Path to a YAML/JSON table; empty means English.

	// Remote result store (optional)
	ResultStoreURL    string
	ResultStoreAPIKey string

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("VIGCRACK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		MaxTextBytes:   envInt64("MAX_TEXT_BYTES", 1048576),    // 1MB

		MinRepeat:       envInt("MIN_REPEAT", vigenere.DefaultMinRepeat),
		TopShifts:       envInt("TOP_SHIFTS", vigenere.DefaultTopShifts),
		AnalysisWorkers: envInt("ANALYSIS_WORKERS", 4),
		FrequencyTable:  os.Getenv("FREQUENCY_TABLE"),

		ResultStoreURL:    strings.TrimRight(os.Getenv("RESULT_STORE_URL"), "/"),
		ResultStoreAPIKey: os.Getenv("RESULT_STORE_API_KEY"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = 1048576
	}
	if cfg.MinRepeat <= 0 {
		cfg.MinRepeat = vigenere.DefaultMinRepeat
	}
	if cfg.TopShifts <= 0 {
		cfg.TopShifts = vigenere.DefaultTopShifts
	}
	if cfg.AnalysisWorkers <= 0 {
		cfg.AnalysisWorkers = 1
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("VIGCRACK_API_KEY is required")
	}
	if c.ResultStoreURL != "" && c.ResultStoreAPIKey == "" {
		return fmt.Errorf("RESULT_STORE_API_KEY is required when RESULT_STORE_URL is set")
	}
	if c.FrequencyTable != "" {
		if _, err := c.LoadTable(); err != nil {
			return err
		}
	}
	return nil
}

// LoadTable reads the configured frequency table, or returns English.
func (c Config) LoadTable() (vigenere.FrequencyTable, error) {
	if c.FrequencyTable == "" {
		return vigenere.English(), nil
	}
	f, err := os.Open(c.FrequencyTable)
	if err != nil {
		return vigenere.FrequencyTable{}, fmt.Errorf("open frequency table: %w", err)
	}
	defer f.Close()

	t, err := vigenere.LoadTable(f)
	if err != nil {
		return vigenere.FrequencyTable{}, fmt.Errorf("load %s: %w", c.FrequencyTable, err)
	}
	return t, nil
}

// AnalyzerOptions returns the analysis defaults for the service.
func (c Config) AnalyzerOptions(table vigenere.FrequencyTable) vigenere.Options {
	return vigenere.Options{
		MinRepeat: c.MinRepeat,
		TopShifts: c.TopShifts,
		Table:     table,
		Workers:   c.AnalysisWorkers,
	}
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
