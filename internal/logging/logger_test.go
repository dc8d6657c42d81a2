package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"level":"info"`)
}

func TestSub_TagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").Sub("telegram")

	log.Info().Msg("connected")

	assert.Contains(t, buf.String(), `"subsystem":"telegram"`)
}

func TestSilentLevelDropsEverything(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "silent")

	log.Error().Msg("nope")

	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, parseLevel("silent"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
