package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARN":     zerolog.WarnLevel,
		" error ":  zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		SetLevel(in)
		assert.Equal(t, want, zerolog.GlobalLevel(), in)
	}
}

func TestWithContextWithoutSpan(t *testing.T) {
	l := WithContext(context.Background())
	assert.NotNil(t, l)
}
