package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

var eventCols = []string{"id", "restaurant_id", "order_id", "type", "action", "status", "version", "created_at"}

func TestEventRepositoryClaimUnpublished(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &eventRepository{storage: storage}

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5, claimLease.Seconds()).WillReturnRows(
		pgxmockv3.NewRows(eventCols).
			AddRow("e1", "r1", "o1", model.OrderEventCreated, "", model.OrderStatusPending, int64(1), now).
			AddRow("e2", "r1", "o1", model.OrderEventTransition, "accept", model.OrderStatusAccepted, int64(2), now),
	)
	mock.ExpectExec("UPDATE order_events SET claimed_at=NOW").WithArgs([]string{"e1", "e2"}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	events, err := repo.ClaimUnpublished(context.Background(), 5)
	if err != nil || len(events) != 2 {
		t.Fatalf("unexpected result: %v err=%v", events, err)
	}
	if events[1].Action != "accept" || events[1].Status != model.OrderStatusAccepted {
		t.Fatalf("unexpected event: %+v", events[1])
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5, claimLease.Seconds()).WillReturnRows(pgxmockv3.NewRows(eventCols))
	mock.ExpectCommit()
	events, err = repo.ClaimUnpublished(context.Background(), 5)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected no events, got %v err=%v", events, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5, claimLease.Seconds()).WillReturnError(errors.New("select"))
	mock.ExpectRollback()
	if _, err := repo.ClaimUnpublished(context.Background(), 5); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5, claimLease.Seconds()).WillReturnRows(
		pgxmockv3.NewRows(eventCols).AddRow("e1", "r1", "o1", model.OrderEventCreated, "", model.OrderStatusPending, "bad", now),
	)
	mock.ExpectRollback()
	if _, err := repo.ClaimUnpublished(context.Background(), 5); err == nil {
		t.Fatal("expected scan error")
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(5, claimLease.Seconds()).WillReturnRows(
		pgxmockv3.NewRows(eventCols).AddRow("e1", "r1", "o1", model.OrderEventCreated, "", model.OrderStatusPending, int64(1), now),
	)
	mock.ExpectExec("UPDATE order_events SET claimed_at=NOW").WithArgs([]string{"e1"}).WillReturnError(errors.New("claim"))
	mock.ExpectRollback()
	if _, err := repo.ClaimUnpublished(context.Background(), 5); err == nil {
		t.Fatal("expected claim error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestEventRepositoryMarkAndRelease(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &eventRepository{storage: storage}
	ctx := context.Background()

	if err := repo.MarkPublished(ctx, nil); err != nil {
		t.Fatalf("expected no-op for empty ids, got %v", err)
	}
	if err := repo.Release(ctx, nil); err != nil {
		t.Fatalf("expected no-op for empty ids, got %v", err)
	}

	mock.ExpectExec("SET published_at=NOW").WithArgs([]string{"e1"}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkPublished(ctx, []string{"e1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("SET claimed_at=NULL").WithArgs([]string{"e2"}).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Release(ctx, []string{"e2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("SET published_at=NOW").WithArgs([]string{"e3"}).WillReturnError(errors.New("boom"))
	if err := repo.MarkPublished(ctx, []string{"e3"}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
