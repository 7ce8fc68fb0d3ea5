package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "debug", Format: "json"}, &buf).
		With(String("component", "sched"))

	log.Info("dispatch", Uint32("tick", 42), Err(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "dispatch", rec["message"])
	require.Equal(t, "sched", rec["component"])
	require.EqualValues(t, 42, rec["tick"])
	require.Equal(t, "boom", rec["err"])
	require.Contains(t, rec["caller"], "logging_test.go")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Level: "warn", Format: "json"}, &buf)
	require.False(t, log.Enabled(LevelInfo))
	require.True(t, log.Enabled(LevelError))

	log.Info("dropped")
	require.Zero(t, buf.Len())

	log.Warn("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestZeroAndNop(t *testing.T) {
	var zero Logger
	require.True(t, zero.IsZero())
	require.False(t, zero.Enabled(LevelError))
	zero.Error("must not panic")

	nop := Nop()
	require.False(t, nop.IsZero())
	require.False(t, nop.Enabled(LevelError))
	nop.Error("must not panic")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
