package prerouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/easyfin/easyfin/cache/ristretto"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/core"
	"github.com/easyfin/easyfin/db/mock"
)

// newTestApp wires an App over a mock store. A nil logger discards output.
func newTestApp(t *testing.T, cfg *config.Config, logger *slog.Logger) *core.App {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := ristretto.New[any]("small")
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(c.Close)

	app, err := core.NewApp(
		core.WithDbApp(&mock.Db{}),
		core.WithConfigProvider(config.NewProvider(cfg)),
		core.WithLogger(logger),
		core.WithCache(c),
	)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app
}

// memoryHandler writes JSON records to a buffer so the last one can be
// inspected.
type memoryHandler struct {
	b *bytes.Buffer
	h slog.Handler
}

func newMemoryHandler(b *bytes.Buffer) *memoryHandler {
	return &memoryHandler{
		b: b,
		h: slog.NewJSONHandler(b, nil),
	}
}

func (h *memoryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *memoryHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.h.Handle(ctx, r)
}

func (h *memoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &memoryHandler{b: h.b, h: h.h.WithAttrs(attrs)}
}

func (h *memoryHandler) WithGroup(name string) slog.Handler {
	return &memoryHandler{b: h.b, h: h.h.WithGroup(name)}
}

// LastRecord parses the last line written to the buffer.
func (h *memoryHandler) LastRecord() (map[string]interface{}, error) {
	lines := bytes.Split(bytes.TrimSpace(h.b.Bytes()), []byte("\n"))
	var record map[string]interface{}
	err := json.Unmarshal(lines[len(lines)-1], &record)
	return record, err
}
