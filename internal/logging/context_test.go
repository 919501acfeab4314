package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	// Initially empty.
	assert.Equal(t, "", OwnerID(ctx))
	assert.Equal(t, "", Tab(ctx))
	assert.Equal(t, "", DocumentID(ctx))

	// Set values.
	ctx = WithOwnerID(ctx, "owner-123")
	ctx = WithTab(ctx, "api")
	ctx = WithDocumentID(ctx, "doc-42")

	// Round-trip.
	assert.Equal(t, "owner-123", OwnerID(ctx))
	assert.Equal(t, "api", Tab(ctx))
	assert.Equal(t, "doc-42", DocumentID(ctx))
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithOwnerID(context.Background(), "owner-auto")
	ctx = WithTab(ctx, "database")
	ctx = WithDocumentID(ctx, "doc-auto")
	logger.InfoContext(ctx, "auto inject")

	output := buf.String()
	assert.Contains(t, output, `"owner_id":"owner-auto"`)
	assert.Contains(t, output, `"tab":"database"`)
	assert.Contains(t, output, `"document_id":"doc-auto"`)
	assert.Contains(t, output, "auto inject")
}

func TestCorrelationHandlerEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	logger.InfoContext(context.Background(), "bare log")

	output := buf.String()
	assert.NotContains(t, output, "owner_id")
	assert.NotContains(t, output, "document_id")
	assert.Contains(t, output, "bare log")
}

func TestCorrelationHandlerPartialContext(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithTab(context.Background(), "schema")
	logger.InfoContext(ctx, "partial")

	output := buf.String()
	assert.Contains(t, output, `"tab":"schema"`)
	assert.NotContains(t, output, "owner_id")
	assert.NotContains(t, output, "document_id")
}

func TestCorrelationHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "api")}))

	ctx := WithOwnerID(context.Background(), "owner-attr")
	logger.InfoContext(ctx, "with attrs")

	output := buf.String()
	assert.Contains(t, output, `"owner_id":"owner-attr"`)
	assert.Contains(t, output, `"component":"api"`)
}

func TestCorrelationHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithGroup("api"))

	ctx := WithOwnerID(context.Background(), "owner-grp")
	logger.InfoContext(ctx, "grouped", "key", "val")

	output := buf.String()
	assert.Contains(t, output, "owner-grp")
	assert.Contains(t, output, "grouped")
}
