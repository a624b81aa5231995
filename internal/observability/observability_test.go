package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("pipeline started", "batch_size", 50)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "pipeline started", record["msg"])
	assert.Equal(t, float64(50), record["batch_size"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("loaded reference data", "spots", 4)

	assert.Contains(t, buf.String(), "loaded reference data")
	assert.Contains(t, buf.String(), "spots")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	for _, c := range m.collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.BloomStatus.WithLabelValues("full_bloom").Inc()
	m.BloomIndeterminate.WithLabelValues("no_region").Inc()
	m.ReferenceRowsLoaded.WithLabelValues("spots").Set(4)
	m.GeocodeRequests.WithLabelValues("success").Inc()
	m.GeocodeCache.WithLabelValues("hit").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"bloom_enricher_bloom_status_total",
		"bloom_enricher_bloom_indeterminate_total",
		"bloom_enricher_reference_rows_loaded",
		"bloom_enricher_geocode_requests_total",
		"bloom_enricher_geocode_cache_total",
		"bloom_enricher_messages_consumed_total",
	} {
		assert.True(t, names[want], want)
	}
}
