package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

const (
	connectAttempts = 3
	publishAttempts = 3
	flushTimeout    = 2 * time.Second

	allOrdersSubject = "orders.*.*"
)

type natsConn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	FlushTimeout(timeout time.Duration) error
	IsConnected() bool
	Close()
}

// NATSPublisher publishes order events on per-restaurant subjects.
type NATSPublisher struct {
	conn      natsConn
	logger    *slog.Logger
	retryWait time.Duration
}

var connect = func(url string, opts ...nats.Option) (natsConn, error) {
	return nats.Connect(url, opts...)
}

// NewNATSPublisher dials url, retrying a few times before giving up.
func NewNATSPublisher(ctx context.Context, url string, logger *slog.Logger) (*NATSPublisher, error) {
	var (
		conn natsConn
		err  error
	)
	for i := 0; i < connectAttempts; i++ {
		conn, err = connect(url,
			nats.Name("dispatchd"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("nats disconnected", slog.String("error", err.Error()))
				}
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
			}),
		)
		if err == nil {
			logger.Info("connected to nats", slog.String("url", url))
			return newNATSPublisher(conn, logger), nil
		}
		logger.Warn("nats connect failed", slog.Int("attempt", i+1), slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect nats: %w", err)
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect nats after %d attempts: %w", connectAttempts, err)
}

func newNATSPublisher(conn natsConn, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, logger: logger, retryWait: time.Second}
}

// Publish sends event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	data, err := Encode(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := Subject(event)

	var lastErr error
	for i := 0; i < publishAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.retryWait):
			}
		}
		if lastErr = p.conn.Publish(subject, data); lastErr != nil {
			p.logger.Warn("nats publish failed", slog.String("subject", subject), slog.Int("attempt", i+1), slog.String("error", lastErr.Error()))
			continue
		}
		if lastErr = p.conn.FlushTimeout(flushTimeout); lastErr != nil {
			p.logger.Warn("nats flush failed", slog.String("subject", subject), slog.String("error", lastErr.Error()))
			continue
		}
		return nil
	}
	return fmt.Errorf("publish %s: %w", subject, lastErr)
}

// Subscribe hands every order event on the bus to handler until stop is
// called. Malformed messages are logged and skipped.
func (p *NATSPublisher) Subscribe(handler Publisher) (func(), error) {
	sub, err := p.conn.Subscribe(allOrdersSubject, func(msg *nats.Msg) {
		event, err := Decode(msg.Data)
		if err != nil {
			p.logger.Warn("malformed order event", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
			return
		}
		if err := handler.Publish(context.Background(), event); err != nil {
			p.logger.Warn("order event handler failed", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", allOrdersSubject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Warn("nats unsubscribe failed", slog.String("error", err.Error()))
		}
	}, nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil && p.conn.IsConnected() {
		p.conn.Close()
		p.logger.Info("nats connection closed")
	}
}

// Discard drops every event; used when no NATS_URL is configured.
type Discard struct{}

func (Discard) Publish(context.Context, model.OrderEvent) error { return nil }
