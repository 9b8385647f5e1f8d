package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Infof("loaded %d types", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "loaded 3 types", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "warn", Format: "json", Output: buf})

	log.Debugf("debug")
	log.Infof("info")
	assert.Empty(t, buf.String())

	log.Warnf("warn")
	assert.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	log.Errorf("boom: %s", "x")
	assert.Contains(t, buf.String(), `"message":"boom: x"`)
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "debug", Format: "json", Output: buf})

	child := log.With().Str("component", "schema").Int("attempt", 2).Logger()
	child.Debugf("loading")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "schema", entry["component"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestNop(t *testing.T) {
	// must not panic
	Nop().Errorf("ignored %v", 1)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
