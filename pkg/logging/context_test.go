package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActor(ctx, 42)

	assert.Equal(t, []interface{}{
		"trace_id", "trace-1",
		"request_id", "req-1",
		"actor_id", int64(42),
	}, GetLogFields(ctx))
}
