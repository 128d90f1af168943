package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	req := require.New(t)
	req.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
	req.Equal(slog.LevelWarn, ParseLevel("warning"))
	req.Equal(slog.LevelError, ParseLevel("error"))
	req.Equal(slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", true).With("component", "sweeper")

	log.Debug("hidden")
	log.Info("Participant registered", "name", "Ana")

	var entry map[string]any
	req.NoError(json.Unmarshal(buf.Bytes(), &entry))
	req.Equal("Participant registered", entry["msg"])
	req.Equal("sweeper", entry["component"])
	req.Equal("Ana", entry["name"])
}
