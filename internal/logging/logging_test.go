package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		debug     bool
		want      zerolog.Level
	}{
		{"default warn level", 0, false, zerolog.WarnLevel},
		{"info level", 1, false, zerolog.InfoLevel},
		{"debug level", 2, false, zerolog.DebugLevel},
		{"trace level", 3, false, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 7, false, zerolog.TraceLevel},
		{"debug flag raises to debug", 0, true, zerolog.DebugLevel},
		{"debug flag keeps trace", 3, true, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLoggerTo(&buf, tt.verbosity, tt.debug)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestGetLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, 1, false)

	logger := GetLogger("builder")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "component=builder")
	assert.Contains(t, buf.String(), "hello")
}
