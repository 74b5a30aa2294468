package ws

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/adapter/events"
	"github.com/polkiloo/dispatch/internal/metrics"
)

// Module provides the hub, also as the "hub" event publisher.
var Module = fx.Options(
	fx.Provide(
		newHub,
		fx.Annotate(
			func(h *Hub) events.Publisher { return h },
			fx.ResultTags(`name:"hub"`),
		),
	),
	fx.Invoke(registerLifecycle),
)

func newHub(renderer Renderer, m *metrics.Metrics, logger *slog.Logger) *Hub {
	return NewHub(renderer, m, logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Hub       *Hub
	Bus       events.Publisher `name:"bus"`
	Logger    *slog.Logger
}

func registerLifecycle(p lifecycleParams) {
	stop := func() {}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			bus, ok := p.Bus.(events.Subscriber)
			if !ok {
				return nil
			}
			unsubscribe, err := bus.Subscribe(p.Hub)
			if err != nil {
				return err
			}
			stop = unsubscribe
			p.Logger.Info("live streams follow the event bus")
			return nil
		},
		OnStop: func(context.Context) error {
			stop()
			p.Hub.CloseAll()
			return nil
		},
	})
}
