package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestDecorator_AddsRunAndRequestIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewLogHandlerDecorator(newHandler(&buf, Config{}), RunIDExtractor(), RequestIDExtractor(), nil))

	ctx := WithRequestID(WithRunID(context.Background(), "run-1"), "req-9")
	log.InfoContext(ctx, "merge run started")

	rec := decode(t, &buf)
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Equal(t, "req-9", rec["request_id"])
}

func TestDecorator_SkipsMissingIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewLogHandlerDecorator(newHandler(&buf, Config{}), RunIDExtractor()))

	log.InfoContext(WithRunID(context.Background(), ""), "no run")

	rec := decode(t, &buf)
	assert.NotContains(t, rec, "run_id")
}

func TestDecorator_WithAttrsKeepsExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewLogHandlerDecorator(newHandler(&buf, Config{}), RunIDExtractor())).
		With(slog.String("component", "scheduler")).
		WithGroup("g")

	log.InfoContext(WithRunID(context.Background(), "run-2"), "fired", slog.Int("rows", 3))

	rec := decode(t, &buf)
	assert.Equal(t, "scheduler", rec["component"])
	group, ok := rec["g"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, group["rows"])
	assert.Equal(t, "run-2", group["run_id"])
}

func TestRunID(t *testing.T) {
	t.Parallel()

	_, ok := RunID(context.Background())
	assert.False(t, ok)

	id, ok := RunID(WithRunID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewHandler_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(newHandler(&buf, Config{Format: "text", Level: "warn"})).Info("hidden")
	assert.Empty(t, buf.String())

	slog.New(newHandler(&buf, Config{Format: "text"})).Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestMultiHandler_FansOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("info only")
	assert.NotEmpty(t, a.String())
	assert.Empty(t, b.String())

	log.Error("both")
	assert.Contains(t, b.String(), "both")
}

func TestNewWithSentry_NoDSNFallsBack(t *testing.T) {
	t.Parallel()

	log := NewWithSentry(Config{}, SentryConfig{})
	require.NotNil(t, log)
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := NewNope()
	require.NotNil(t, log)
	log.Error("discarded")
}
