package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/dispatch/internal/adapter/events"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

// EventSource exposes the outbox operations required by the relay.
type EventSource interface {
	ClaimEvents(ctx context.Context, limit int) ([]model.OrderEvent, error)
	MarkEventsPublished(ctx context.Context, ids []string) error
	ReleaseEvents(ctx context.Context, ids []string) error
}

// RelayMetrics observes relay outcomes.
type RelayMetrics interface {
	EventRelayed(recordedAt time.Time, err error)
}

// Target is a named subscriber transport.
type Target struct {
	Name      string
	Publisher events.Publisher
}

// EventRelay drains the outbox into subscriber transports with a pool of
// workers.
type EventRelay struct {
	source       EventSource
	targets      []Target
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger
	metrics      RelayMetrics

	jobs   chan model.OrderEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewEventRelay constructs the relay worker pool.
func NewEventRelay(source EventSource, targets []Target, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger, metrics RelayMetrics) *EventRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &EventRelay{
		source:       source,
		targets:      targets,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		metrics:      metrics,
		jobs:         make(chan model.OrderEvent, batchSize*workers),
	}
}

// Start launches background processing.
func (r *EventRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *EventRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *EventRelay) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *EventRelay) fetchAndDispatch(ctx context.Context) {
	batch, err := r.source.ClaimEvents(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("claim outbox events failed", slog.String("error", err.Error()))
		return
	}
	for i, e := range batch {
		select {
		case <-ctx.Done():
			r.release(context.Background(), batch[i:])
			return
		case r.jobs <- e:
		}
	}
}

func (r *EventRelay) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case e, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handle(ctx, e)
		}
	}
}

// drain hands queued but unhandled events back to the outbox.
func (r *EventRelay) drain() {
	var left []model.OrderEvent
	for {
		select {
		case e, ok := <-r.jobs:
			if !ok {
				r.release(context.Background(), left)
				return
			}
			left = append(left, e)
		default:
			r.release(context.Background(), left)
			return
		}
	}
}

func (r *EventRelay) handle(ctx context.Context, e model.OrderEvent) {
	var failed error
	for _, t := range r.targets {
		if err := t.Publisher.Publish(ctx, e); err != nil {
			failed = err
			r.logger.Warn("event publish failed",
				slog.String("target", t.Name),
				slog.String("event", e.ID),
				slog.String("order", e.OrderID),
				slog.String("error", err.Error()),
			)
		}
	}
	if r.metrics != nil {
		r.metrics.EventRelayed(e.CreatedAt, failed)
	}

	if failed != nil {
		r.release(context.Background(), []model.OrderEvent{e})
		return
	}
	if err := r.source.MarkEventsPublished(context.Background(), []string{e.ID}); err != nil {
		r.logger.Error("mark event published failed", slog.String("event", e.ID), slog.String("error", err.Error()))
	}
}

func (r *EventRelay) release(ctx context.Context, batch []model.OrderEvent) {
	if len(batch) == 0 {
		return
	}
	ids := make([]string, len(batch))
	for i, e := range batch {
		ids[i] = e.ID
	}
	if err := r.source.ReleaseEvents(ctx, ids); err != nil {
		r.logger.Error("release outbox events failed", slog.Int("count", len(ids)), slog.String("error", err.Error()))
	}
}
