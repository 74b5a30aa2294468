package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/dispatch/internal/metrics"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewUserUseCase,
	NewSettingsUseCase,
	NewCatalogUseCase,
	NewOrderUseCase,
	func(m *metrics.Metrics) Metrics { return m },
)
