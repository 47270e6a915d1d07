package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEventFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	LogEvent(" req-1 ", "HABIT", "create", "habit_id=h_1")
	LogError("req-1", "habit", "list", errors.New("boom"))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "habit_id=h_1", entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, "habit", fields["module"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}

func TestEnsureLoggerInstallsFallback(t *testing.T) {
	current.Store(nil)
	t.Cleanup(func() { SetLogger(nil) })

	EnsureLogger()
	assert.True(t, L().Core().Enabled(zapcore.ErrorLevel))

	core, _ := observer.New(zapcore.InfoLevel)
	custom := zap.New(core)
	SetLogger(custom)
	EnsureLogger()
	assert.Same(t, custom, L())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, SplitList(" http://a ; ,http://b\n"))
	assert.Equal(t, []string{}, SplitList(""))
}

func TestSafeFilenamePart(t *testing.T) {
	assert.Equal(t, "NA", SafeFilenamePart("  "))
	assert.Equal(t, "habits_2026-01-01_10_00", SafeFilenamePart("habits 2026-01-01 10:00"))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 4, 5, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "2026-01-02 03:04:05", FormatDateTime(ts))
}
