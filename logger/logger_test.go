package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"DEBUG":   zerolog.DebugLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"ERROR":   zerolog.ErrorLevel,
		"FATAL":   zerolog.FatalLevel,
		"PANIC":   zerolog.PanicLevel,
		"INFO":    zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}
