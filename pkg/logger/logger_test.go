package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/pickups/pkg/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.Logging{Level: "info", Format: "json"}, "engine")

	l.Debug().Msg("hidden")
	l.Info().Int("jobs", 3).Msg("batch assigned")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "batch assigned", entry["message"])
	assert.EqualValues(t, 3, entry["jobs"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.Logging{Level: "debug", Format: "console"}, "server")

	l.Debug().Msg("listening")
	assert.Contains(t, buf.String(), "listening")
	assert.Contains(t, buf.String(), "server")
}

func TestNewWithWriterBadLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.Logging{Level: "", Format: "json"}, "x")
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
