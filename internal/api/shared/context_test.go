package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("missing trace ID returns empty string", func(t *testing.T) {
		assert.Equal(t, "", GetTraceID(context.Background()))
	})

	t.Run("set then get", func(t *testing.T) {
		ctx := SetTraceID(context.Background())
		traceID := GetTraceID(ctx)
		assert.Len(t, traceID, TraceIDLength*2, "trace ID should be hex of %d bytes", TraceIDLength)
	})

	t.Run("trace IDs are unique", func(t *testing.T) {
		a := GetTraceID(SetTraceID(context.Background()))
		b := GetTraceID(SetTraceID(context.Background()))
		assert.NotEqual(t, a, b)
	})
}
