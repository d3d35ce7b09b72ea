package zaplogger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

func TestLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core), observability.F("component", "test"))

	l.With(observability.F("order_id", int64(7))).Warn("use_case_done",
		observability.F("error", errors.New("boom")),
		observability.F("total", decimal.RequireFromString("12.50")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "use_case_done", entries[0].Message)
	assert.Equal(t, "test", fields["component"])
	assert.Equal(t, int64(7), fields["order_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "12.5", fields["total"])
}

func TestNilLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).With(observability.F("k", "v")).Info("ignored")
	})
}
