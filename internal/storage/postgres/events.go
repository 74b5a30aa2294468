package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// claimLease is how long a claimed event stays invisible to other relays.
const claimLease = 30 * time.Second

type eventRepository struct {
	storage *Storage
}

func insertEvent(ctx context.Context, q querier, e model.OrderEvent) error {
	const query = `INSERT INTO order_events (id, restaurant_id, order_id, type, action, status, version, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.Exec(ctx, query, e.ID, e.RestaurantID, e.OrderID, e.Type, e.Action, e.Status, e.Version, e.CreatedAt)
	return err
}

func (r *eventRepository) ClaimUnpublished(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	const selectQuery = `SELECT id, restaurant_id, order_id, type, action, status, version, created_at
                         FROM order_events
                         WHERE published_at IS NULL
                           AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE order_events SET claimed_at=NOW() WHERE id = ANY($1)`

	var events []model.OrderEvent
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit, claimLease.Seconds())
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e model.OrderEvent
			if err := rows.Scan(&e.ID, &e.RestaurantID, &e.OrderID, &e.Type, &e.Action, &e.Status, &e.Version, &e.CreatedAt); err != nil {
				return err
			}
			events = append(events, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, claimQuery, eventIDs(events))
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE order_events SET published_at=NOW() WHERE id = ANY($1)`
	_, err := r.storage.pool.Exec(ctx, query, ids)
	return err
}

func (r *eventRepository) Release(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE order_events SET claimed_at=NULL WHERE id = ANY($1) AND published_at IS NULL`
	_, err := r.storage.pool.Exec(ctx, query, ids)
	return err
}

func eventIDs(events []model.OrderEvent) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
