// Package telemetry configures process-wide logging and holds the Prometheus metrics of
// oracle construction.
package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/prometheus/client_golang/prometheus"
)

type LogConfig struct {
	// File is the rotating log file. Empty logs to stdout only.
	File       string `yaml:"file" json:"file"`
	Level      string `yaml:"level" json:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("telemetry: unknown log level %q", s)
}

// NewLogger builds a text logger writing to stdout and, when cfg.File is set, to a
// rotating file. The returned closer releases the file.
func NewLogger(cfg LogConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	w := stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("telemetry: log dir: %w", err)
		}
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10), // megabytes
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28), // days
			Compress:   true,
		}
		w = io.MultiWriter(stdout, fileLogger)
		closer = fileLogger
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

// SetupLogging installs NewLogger's logger as the slog default.
func SetupLogging(cfg LogConfig) (io.Closer, error) {
	logger, closer, err := NewLogger(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func orDefault(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var (
	DocumentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_documents_total",
			Help: "Documents processed, by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	ScorerEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_scorer_evaluations_total",
			Help: "Similarity evaluations made by oracle search, by method.",
		},
		[]string{"method"},
	)
	Refinements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_refinements_total",
			Help: "Refinement attempts, by outcome (refined, skipped, failed).",
		},
		[]string{"outcome"},
	)
	SamplerExclusions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_sampler_excluded_total",
			Help: "Documents left out of negative sampling for lack of the oracle field.",
		},
	)
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_search_duration_seconds",
			Help:    "Time spent building one oracle.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(DocumentsProcessed, ScorerEvaluations, Refinements, SamplerExclusions, SearchDuration)
}

// ObserveSearch records one finished search.
func ObserveSearch(method, outcome string, evaluations int, elapsed time.Duration) {
	DocumentsProcessed.WithLabelValues(method, outcome).Inc()
	if evaluations > 0 {
		ScorerEvaluations.WithLabelValues(method).Add(float64(evaluations))
	}
	SearchDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
