// Package cli wires configuration, storage, locking and metrics into an engine
// for the shablon commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/internal/config"
	"github.com/aretw0/shablon/internal/metrics"
	redisAdapter "github.com/aretw0/shablon/pkg/adapters/redis"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// LockPrefix namespaces the compile locks in Redis.
const LockPrefix = "shablon:"

// App is an opened engine with the resources it holds.
type App struct {
	Engine   *shablon.Engine
	Registry *prometheus.Registry
	Logger   *slog.Logger
	closers  []func() error
}

// Close releases the engine and the Redis client, if any.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenApp opens the database named by cfg and builds an engine with metrics
// hooks, debug hooks when the logger is at debug level, and a Redis compile lock
// when cfg.RedisAddr is set.
func OpenApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Registry: prometheus.NewRegistry(), Logger: logger}

	collectors, err := metrics.New(app.Registry)
	if err != nil {
		return nil, err
	}
	hooks := collectors.Hooks()
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = hooks.Merge(debugHooks(logger))
	}

	opts := []shablon.Option{
		shablon.WithLogger(logger),
		shablon.WithLifecycleHooks(hooks),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		app.closers = append(app.closers, client.Close)
		opts = append(opts, shablon.WithLocker(redisAdapter.NewLocker(client, LockPrefix), cfg.LockTTL))
	}

	eng, err := shablon.Open(ctx, cfg.DBPath, opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = eng
	app.closers = append(app.closers, eng.Close)
	return app, nil
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			logger.Debug("Resolve", "run_id", e.RunID, "step_id", e.StepID, "to_step_id", e.ToStepID, "outcome", e.Outcome)
		},
		OnCompile: func(_ context.Context, e *domain.CompileEvent) {
			if e.Err != nil {
				logger.Debug("Compile (Error)", "err", e.Err)
				return
			}
			logger.Debug("Compile", "template_id", e.TemplateID, "steps", e.Steps, "dropped", e.Dropped)
		},
	}
}
