package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/adapter/events"
	"github.com/polkiloo/dispatch/internal/adapter/geocode"
	"github.com/polkiloo/dispatch/internal/app"
	"github.com/polkiloo/dispatch/internal/cache/redis"
	"github.com/polkiloo/dispatch/internal/config"
	"github.com/polkiloo/dispatch/internal/logger"
	"github.com/polkiloo/dispatch/internal/metrics"
	"github.com/polkiloo/dispatch/internal/pkg/auth"
	"github.com/polkiloo/dispatch/internal/server/http/router"
	"github.com/polkiloo/dispatch/internal/server/ws"
	"github.com/polkiloo/dispatch/internal/storage/postgres"
	"github.com/polkiloo/dispatch/internal/usecase"
)

// Module composes the whole service graph. Extra options are appended last,
// so tests can swap infrastructure with fx.Replace.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		fx.Provide(func(s *postgres.Storage) router.HealthChecker { return s }),
		redis.Module,
		events.Module,
		geocode.Module,
		usecase.Module,
		ws.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
