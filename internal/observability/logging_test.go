package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestContextValues(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithPage(ctx, "cards")
	ctx = WithStage(ctx, "assemble")

	assert.Equal(t, LogContext{BuildID: "b-1", Page: "cards", Stage: "assemble"}, GetContext(ctx))
	assert.Equal(t, LogContext{}, GetContext(context.Background()))
}

func TestInfoContext_IncludesAttributes(t *testing.T) {
	buf := captureDefault(t)

	ctx := WithPage(WithBuildID(context.Background(), "b-2"), "buttons")
	InfoContext(ctx, "Page written", slog.Int("blocks", 4))
	DebugContext(context.Background(), "plain")

	out := buf.String()
	assert.Contains(t, out, "build_id=b-2")
	assert.Contains(t, out, "page=buttons")
	assert.Contains(t, out, "blocks=4")
	assert.Contains(t, out, "msg=plain")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(WithPage(context.Background(), "alerts"), base).Warn("missing")
	assert.Contains(t, buf.String(), "page=alerts")

	assert.Same(t, base, Logger(context.Background(), base))
}
