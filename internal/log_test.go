package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" Info ":  LogLevelInfo,
		"DEBUG":   LogLevelDebug,
		"trace":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn)

	logger.Info("hidden", "k", 1)
	logger.Debug("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn("numerical warning", "code", "DEGENERATE_DRAWS")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=DEGENERATE_DRAWS")

	buf.Reset()
	logger.Error("boom")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestLogger_WithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelTrace).With("test_id", "abc")

	logger.Trace("drawing")
	assert.Contains(t, buf.String(), "test_id=abc")
	assert.Contains(t, buf.String(), "drawing")
	assert.Equal(t, LogLevelTrace, logger.GetLevel())
}
