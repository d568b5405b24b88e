package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-kernel/framework/app"
	"github.com/km-arc/go-kernel/framework/container"
	"github.com/km-arc/go-kernel/framework/providers"
	"github.com/km-arc/go-kernel/framework/routing"
)

// ── Services ──────────────────────────────────────────────────────────────────

// Counter is a tiny in-memory service with start and stop hooks.
type Counter struct {
	log  *zap.Logger
	hits atomic.Int64
}

func (c *Counter) Warmup(ctx context.Context) map[string]any {
	c.log.Info("counter warming up")
	return map[string]any{"services": []string{"counter"}}
}

func (c *Counter) Flush() error {
	c.log.Info("counter flushed", zap.Int64("hits", c.hits.Load()))
	return nil
}

// ── Controllers ───────────────────────────────────────────────────────────────

type HitController struct{ counter *Counter }

func (h *HitController) Hit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"hits": h.counter.hits.Add(1)})
}

func (h *HitController) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name": routing.Param(r, "name"),
		"hits": h.counter.hits.Load(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ── Wiring ────────────────────────────────────────────────────────────────────

var (
	lifecycle = container.NewLifecycle()

	CounterClass = container.NewClass(func(log *zap.Logger) *Counter { return &Counter{log: log} })
	HitClass     = container.NewClass(func(c *Counter) *HitController { return &HitController{counter: c} })
)

func init() {
	container.Injectable().Class(CounterClass)
	container.Inject(providers.LoggerToken).Param(CounterClass, 0)
	lifecycle.Start.With().Method(CounterClass, "Warmup")
	lifecycle.Stop.With().Method(CounterClass, "Flush")

	container.Injectable().Class(HitClass)
	container.Inject(CounterClass).Param(HitClass, 0)
	routing.Controller("/hits").Class(HitClass)
	routing.Route(http.MethodPost, "/").Method(HitClass, "Hit")
	routing.Route(http.MethodGet, "/{name}").Method(HitClass, "Show")
}

func main() {
	application, err := app.New(
		app.WithLifecycle(lifecycle),
		app.WithControllers(HitClass))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	application.Provide(CounterClass)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger().Fatal("application failed", zap.Error(err))
	}
}
