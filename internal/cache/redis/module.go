package redis

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/config"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

// Module provides the settings cache; without REDIS_ADDR it is a no-op.
var Module = fx.Provide(newCache)

type cacheParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newCache(p cacheParams) repository.SettingsCache {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("settings cache disabled")
		return Noop{}
	}
	c := NewSettingsCache(p.Config.RedisAddr, p.Config.SettingsCacheTTL)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Ping(ctx); err != nil {
				p.Logger.Warn("redis unreachable, settings will be read from storage", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c
}
