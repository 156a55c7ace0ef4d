package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCtx_UsesStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)

	// Level methods chain directly on the returned logger.
	Ctx(ctx).Error().Str("k", "v").Msg("stored")

	out := buf.String()
	assert.Contains(t, out, `"stored"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))

	// Chaining on the global logger works the same way.
	L().Debug().Discard().Msg("")
}
