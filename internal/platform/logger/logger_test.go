package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "run_id", "r1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "r1", line["run_id"])
}

func TestNewWithWriter_RejectsUnknown(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "verbose", "text")
	assert.ErrorContains(t, err, "log level")

	_, err = NewWithWriter(&bytes.Buffer{}, "info", "xml")
	assert.ErrorContains(t, err, "log format")
}
