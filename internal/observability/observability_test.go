package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "json info", level: "info", format: "json"},
		{name: "text debug", level: "DEBUG", format: "text"},
		{name: "default format", level: "warn", format: ""},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}

	logger, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncrementOutcome("successfully_processed")
	m.IncrementOutcome("successfully_processed")
	m.IncrementOutcome("arra")
	m.IncrementNotification("arra", "written")
	m.ObserveStage("validate", 10*time.Millisecond)
	m.ObserveProcessLatency(50 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FileOutcome.WithLabelValues("successfully_processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileOutcome.WithLabelValues("arra")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("arra", "written")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageLatency))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementOutcome("arra")
		m.IncrementNotification("arra", "written")
		m.ObserveStage("persist", time.Second)
		m.ObserveProcessLatency(time.Second)
	})
}
