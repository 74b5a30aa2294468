package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/adapter/events"
	"github.com/polkiloo/dispatch/internal/adapter/geocode"
	"github.com/polkiloo/dispatch/internal/config"
	"github.com/polkiloo/dispatch/internal/domain/repository"
	"github.com/polkiloo/dispatch/internal/metrics"
	"github.com/polkiloo/dispatch/internal/server/http/handlers"
	"github.com/polkiloo/dispatch/internal/usecase"
	"github.com/polkiloo/dispatch/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newDispatchFacade,
		func(f *DispatchFacade) handlers.DispatchFacade { return f },
		newHTTPServer,
		newEventRelay,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Users    *usecase.UserUseCase
	Orders   *usecase.OrderUseCase
	Settings *usecase.SettingsUseCase
	Catalog  *usecase.CatalogUseCase
	Events   repository.EventRepository
	Geocoder geocode.Client
}

func newDispatchFacade(p facadeParams) *DispatchFacade {
	return NewDispatchFacade(p.Auth, p.Users, p.Orders, p.Settings, p.Catalog, p.Events, p.Geocoder)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type relayParams struct {
	fx.In

	Facade  *DispatchFacade
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Bus     events.Publisher `name:"bus"`
	Hub     events.Publisher `name:"hub"`
}

func newEventRelay(p relayParams) *worker.EventRelay {
	return worker.NewEventRelay(
		p.Facade,
		relayTargets(p.Bus, p.Hub),
		p.Config.EventPollInterval,
		p.Config.EventBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
		p.Metrics,
	)
}

// relayTargets feeds the hub directly only when the bus cannot: a shared bus
// delivers every instance's events to each hub through its subscription.
func relayTargets(bus, hub events.Publisher) []worker.Target {
	targets := []worker.Target{{Name: "nats", Publisher: bus}}
	if _, shared := bus.(events.Subscriber); !shared {
		targets = append(targets, worker.Target{Name: "websocket", Publisher: hub})
	}
	return targets
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.EventRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Logger.Info("starting dispatchd", slog.String("addr", p.Server.Addr))
			// The start context expires once fx finishes starting.
			p.Relay.Start(context.Background())
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Relay.Stop()
			p.Logger.Info("dispatchd stopped")
			return nil
		},
	})
}
