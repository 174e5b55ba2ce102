package telemetry

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLoggerWritesBothSinks(t *testing.T) {
	var out bytes.Buffer
	file := filepath.Join(t.TempDir(), "log", "oracle.log")
	logger, closer, err := NewLogger(LogConfig{File: file, Level: "warn"}, &out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("refinement failed", slog.Int("doc", 3))
	require.NoError(t, closer.Close())

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "doc=3")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refinement failed")
}

func TestNewLoggerRejectsLevel(t *testing.T) {
	_, _, err := NewLogger(LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(DocumentsProcessed.WithLabelValues("greedy", "ok"))
	evals := testutil.ToFloat64(ScorerEvaluations.WithLabelValues("greedy"))
	ObserveSearch("greedy", "ok", 12, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(DocumentsProcessed.WithLabelValues("greedy", "ok")))
	assert.Equal(t, evals+12, testutil.ToFloat64(ScorerEvaluations.WithLabelValues("greedy")))
}
