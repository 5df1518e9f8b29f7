package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", true)
	t.Cleanup(func() { Init("info", false) })

	Info("dropped")
	Component("engine").Warn("kept", "lobby_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "abc", line["lobby_id"])
}
