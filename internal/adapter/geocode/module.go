package geocode

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/config"
)

// Module exposes the geocoder to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewNominatimClient(p.Config.GeocoderURL, p.Config.GeocoderRPS, p.Logger)
}
