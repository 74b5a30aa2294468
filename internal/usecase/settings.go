package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

// SettingsUseCase serves restaurant settings snapshots, read through a cache.
type SettingsUseCase struct {
	repo    repository.SettingsRepository
	cache   repository.SettingsCache
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewSettingsUseCase constructs SettingsUseCase.
func NewSettingsUseCase(repo repository.SettingsRepository, cache repository.SettingsCache, metrics Metrics, logger *slog.Logger) *SettingsUseCase {
	return &SettingsUseCase{repo: repo, cache: cache, metrics: metricsOrNoop(metrics), logger: logger, now: time.Now}
}

// Snapshot returns both settings of a restaurant. Missing rows yield zero
// valued settings so that quoting fails with a precise error later on.
//
// The snapshot is written back stamped with the cache generation read before
// the rows were loaded, so a save that lands in between makes it unservable.
func (u *SettingsUseCase) Snapshot(ctx context.Context, restaurantID string) (model.Settings, error) {
	cached, generation, err := u.cache.Get(ctx, restaurantID)
	writeBack := true
	switch {
	case err == nil:
		u.metrics.SettingsCache(true)
		return *cached, nil
	case !errors.Is(err, domainErrors.ErrCacheMiss):
		u.logger.Warn("settings cache read failed", slog.String("restaurant", restaurantID), slog.String("error", err.Error()))
		writeBack = false
	}
	u.metrics.SettingsCache(false)

	s := model.Settings{
		Invoice:  model.InvoiceSettings{RestaurantID: restaurantID},
		Delivery: model.DeliverySettings{RestaurantID: restaurantID},
	}
	inv, err := u.repo.GetInvoice(ctx, restaurantID)
	switch {
	case err == nil:
		s.Invoice = *inv
	case !errors.Is(err, domainErrors.ErrNotFound):
		return model.Settings{}, err
	}
	del, err := u.repo.GetDelivery(ctx, restaurantID)
	switch {
	case err == nil:
		s.Delivery = *del
	case !errors.Is(err, domainErrors.ErrNotFound):
		return model.Settings{}, err
	}

	if !writeBack {
		return s, nil
	}
	if err := u.cache.Set(ctx, s, generation); err != nil {
		u.logger.Warn("settings cache write failed", slog.String("restaurant", restaurantID), slog.String("error", err.Error()))
	}
	return s, nil
}

// SaveInvoice replaces invoice settings of a restaurant.
func (u *SettingsUseCase) SaveInvoice(ctx context.Context, actor model.Actor, s model.InvoiceSettings) (*model.InvoiceSettings, error) {
	if !actor.IsAdmin(s.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	if err := validateInvoice(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = u.now().UTC()
	if err := u.repo.SaveInvoice(ctx, s); err != nil {
		return nil, err
	}
	u.invalidate(ctx, s.RestaurantID)
	return &s, nil
}

// SaveDelivery replaces delivery zone settings of a restaurant.
func (u *SettingsUseCase) SaveDelivery(ctx context.Context, actor model.Actor, s model.DeliverySettings) (*model.DeliverySettings, error) {
	if !actor.IsAdmin(s.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	if err := validateDelivery(s); err != nil {
		return nil, err
	}
	s.UpdatedAt = u.now().UTC()
	if err := u.repo.SaveDelivery(ctx, s); err != nil {
		return nil, err
	}
	u.invalidate(ctx, s.RestaurantID)
	return &s, nil
}

func (u *SettingsUseCase) invalidate(ctx context.Context, restaurantID string) {
	if err := u.cache.Invalidate(ctx, restaurantID); err != nil {
		u.logger.Warn("settings cache invalidation failed", slog.String("restaurant", restaurantID), slog.String("error", err.Error()))
	}
}
