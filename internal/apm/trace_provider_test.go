package apm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/logger"
)

func TestNewTraceProvider_Disabled(t *testing.T) {
	tp, err := NewTraceProvider(config.TelemetryConfig{Enabled: false, TraceProvider: "console"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, emptyTraceProvider{}, tp)
	assert.NoError(t, tp.Stop())
}

func TestNewTraceProvider_UnknownFallsBackToEmpty(t *testing.T) {
	tp, err := NewTraceProvider(config.TelemetryConfig{Enabled: true, TraceProvider: "newrelic"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, emptyTraceProvider{}, tp)
}

func TestNewTraceProvider_Console(t *testing.T) {
	tp, err := NewTraceProvider(config.TelemetryConfig{
		Enabled:       true,
		ServiceName:   "balancer-connector",
		TraceProvider: "CONSOLE",
	}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &traceProvider{}, tp)
	assert.NoError(t, tp.Stop())
}
