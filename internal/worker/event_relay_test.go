package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
	testhelpers "github.com/polkiloo/dispatch/internal/test"
)

type outboxSource struct {
	repo *testhelpers.EventRepositoryStub
}

func (s outboxSource) ClaimEvents(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	return s.repo.ClaimUnpublished(ctx, limit)
}

func (s outboxSource) MarkEventsPublished(ctx context.Context, ids []string) error {
	return s.repo.MarkPublished(ctx, ids)
}

func (s outboxSource) ReleaseEvents(ctx context.Context, ids []string) error {
	return s.repo.Release(ctx, ids)
}

type publisherStub struct {
	mu   sync.Mutex
	err  error
	seen []string
}

func (p *publisherStub) Publish(_ context.Context, e model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, e.ID)
	return p.err
}

type relayMetricsStub struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (m *relayMetricsStub) EventRelayed(_ time.Time, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failed++
		return
	}
	m.ok++
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for relay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewEventRelayDefaults(t *testing.T) {
	relay := NewEventRelay(outboxSource{&testhelpers.EventRepositoryStub{}}, nil, 0, 0, 0, testLogger(), nil)
	if relay.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", relay.batchSize)
	}
	if relay.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", relay.workers)
	}
	if relay.pollInterval != time.Second {
		t.Fatalf("expected 1s poll interval, got %v", relay.pollInterval)
	}
}

func TestEventRelayPublishesToEveryTarget(t *testing.T) {
	repo := &testhelpers.EventRepositoryStub{Pending: []model.OrderEvent{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}}
	bus, hub := &publisherStub{}, &publisherStub{}
	metrics := &relayMetricsStub{}
	relay := NewEventRelay(outboxSource{repo}, []Target{{"bus", bus}, {"hub", hub}}, 5*time.Millisecond, 2, 2, testLogger(), metrics)

	relay.Start(context.Background())
	waitFor(t, func() bool {
		published, _ := repo.Snapshot()
		return len(published) == 3
	})
	relay.Stop()

	bus.mu.Lock()
	defer bus.mu.Unlock()
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(bus.seen) != 3 || len(hub.seen) != 3 {
		t.Fatalf("expected every target to see 3 events, got %v and %v", bus.seen, hub.seen)
	}
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if metrics.ok != 3 || metrics.failed != 0 {
		t.Fatalf("unexpected metrics ok=%d failed=%d", metrics.ok, metrics.failed)
	}
}

func TestEventRelayReleasesFailedEvents(t *testing.T) {
	repo := &testhelpers.EventRepositoryStub{Pending: []model.OrderEvent{{ID: "e1"}}}
	bus := &publisherStub{err: errors.New("nats down")}
	relay := NewEventRelay(outboxSource{repo}, []Target{{"bus", bus}}, 5*time.Millisecond, 1, 1, testLogger(), nil)

	relay.Start(context.Background())
	waitFor(t, func() bool {
		_, released := repo.Snapshot()
		return len(released) == 1
	})
	relay.Stop()

	published, released := repo.Snapshot()
	if len(published) != 0 {
		t.Fatalf("failed event must not be marked published, got %v", published)
	}
	if released[0] != "e1" {
		t.Fatalf("expected e1 released, got %v", released)
	}
}

func TestEventRelaySurvivesClaimErrors(t *testing.T) {
	repo := &testhelpers.EventRepositoryStub{ClaimErr: errors.New("db down")}
	relay := NewEventRelay(outboxSource{repo}, nil, 5*time.Millisecond, 1, 1, testLogger(), nil)

	relay.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	relay.Stop()

	published, released := repo.Snapshot()
	if len(published) != 0 || len(released) != 0 {
		t.Fatalf("expected no outbox changes, got %v %v", published, released)
	}
}

func TestEventRelayStopIsIdempotent(t *testing.T) {
	relay := NewEventRelay(outboxSource{&testhelpers.EventRepositoryStub{}}, nil, time.Millisecond, 1, 1, testLogger(), nil)
	relay.Start(context.Background())
	relay.Start(context.Background())
	relay.Stop()
	relay.Stop()
}
