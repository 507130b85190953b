package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"", false},
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, "json")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestZapLogger_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.With(map[string]interface{}{"deal_id": "deal-7"}).
		WithError(errors.New("boom")).
		Warn("projection defaulted fields", map[string]interface{}{"count": 2})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "projection defaulted fields", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "deal-7", ctx["deal_id"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 2, ctx["count"])
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	log := NewNop()
	log.Debug("x", nil)
	log.Info("x", nil)
	log.Error("x", map[string]interface{}{"k": "v"})
}
