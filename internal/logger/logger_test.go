package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"httpblock/internal/config"
	"httpblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppLogger_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewAppLogger(config.LoggerConfig{Level: config.LogLevelInfo, Format: config.LogFormatJSON}, &buf)
	require.NoError(t, err)

	l.With("mode", "cgi").Info("served", "blocks", 3)
	l.Debug("suppressed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "exactly one JSON line expected")
	assert.Equal(t, "served", entry["msg"])
	assert.Equal(t, "cgi", entry["mode"])
	assert.EqualValues(t, 3, entry["blocks"])
	assert.False(t, l.DebugEnabled())
}

func TestNewAppLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewAppLogger(config.LoggerConfig{Level: "DEBUG", Format: config.LogFormatText}, &buf)
	require.NoError(t, err)

	l.Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.True(t, l.DebugEnabled())
}

func TestNewAppLogger_Unsupported(t *testing.T) {
	_, err := logger.NewAppLogger(config.LoggerConfig{Level: "trace", Format: config.LogFormatText}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = logger.NewAppLogger(config.LoggerConfig{Level: config.LogLevelInfo, Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
