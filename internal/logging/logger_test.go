package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, ok = ParseLevel("verbose")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = zerolog.ErrorLevel
	cfg.Format = "json"

	logger := New(cfg)
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(DefaultConfig())
	ctx := WithContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.NotNil(t, got)
	assert.Equal(t, logger.GetLevel(), got.GetLevel())
}

func TestFromContext_MissingLoggerIsNoop(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
	// Logging through it must not panic.
	got.Debug().Msg("noop")
}

func TestWithIdentifier(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithIdentifier(WithContext(context.Background(), logger), "img://a")

	FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"identifier":"img://a"`)
}
