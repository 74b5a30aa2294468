package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/server/http/handlers"
	"github.com/polkiloo/dispatch/internal/server/ws"
)

// Module registers HTTP router construction for fx runtime, along with the
// renderer the stream hub uses to build frames.
var Module = fx.Provide(
	Setup,
	func(f handlers.DispatchFacade) ws.Renderer { return handlers.NewStreamRenderer(f) },
)
