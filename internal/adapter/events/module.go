package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/config"
)

// Module provides the event bus publisher.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

type publisherResult struct {
	fx.Out

	Publisher Publisher `name:"bus"`
}

func newPublisher(p publisherParams) (publisherResult, error) {
	if p.Config.NATSURL == "" {
		p.Logger.Info("event bus disabled")
		return publisherResult{Publisher: Discard{}}, nil
	}
	pub, err := NewNATSPublisher(p.Ctx, p.Config.NATSURL, p.Logger)
	if err != nil {
		return publisherResult{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pub.Close()
			return nil
		},
	})
	return publisherResult{Publisher: pub}, nil
}
