package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/memo/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated
// testing.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLoggerInfo(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Info("cache hit", "fingerprint", "abc123")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "cache hit")
	assert.Contains(t, out, "fingerprint=abc123")
}

func TestLoggerWarn(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Warn("command failed, result not cached", "exit_code", 3)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "exit_code=3")
}

func TestLoggerError(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(zerr.New("store unreachable"))
	assert.Contains(t, buf.String(), "store unreachable")

	buf.Reset()
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLoggerVerbose(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("hidden")
	assert.Empty(t, buf.String())

	lg.SetVerbose(true)
	lg.Debug("visible", "key", "value")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	lg.SetVerbose(false)
	lg.Debug("hidden again")
	assert.Empty(t, buf.String())
}
