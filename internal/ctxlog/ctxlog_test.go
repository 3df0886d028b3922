package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	assert.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, slog.Default(), FromContext(WithLogger(context.Background(), nil)))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, logger := With(ctx, "request", "freespace")
	logger.Info("one")
	FromContext(ctx).Info("two", "task", "TOTG")

	assert.Contains(t, buf.String(), "msg=one request=freespace")
	assert.Contains(t, buf.String(), "msg=two request=freespace task=TOTG")
}
