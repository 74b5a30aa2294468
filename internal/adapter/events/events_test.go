package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/dispatch/internal/config"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

type fakeConn struct {
	publishErrs []error
	flushErr    error
	subjects    []string
	payloads    [][]byte
	closed      bool

	subscribeErr error
	subscribed   string
	handler      nats.MsgHandler
}

func (f *fakeConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.subscribed = subject
	f.handler = cb
	return nil, nil
}

type recordingHandler struct {
	events []model.OrderEvent
	err    error
}

func (h *recordingHandler) Publish(_ context.Context, e model.OrderEvent) error {
	h.events = append(h.events, e)
	return h.err
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if len(f.publishErrs) > 0 {
		err := f.publishErrs[0]
		f.publishErrs = f.publishErrs[1:]
		if err != nil {
			return err
		}
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushTimeout(time.Duration) error { return f.flushErr }
func (f *fakeConn) IsConnected() bool                { return !f.closed }
func (f *fakeConn) Close()                           { f.closed = true }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleEvent() model.OrderEvent {
	return model.OrderEvent{
		ID:           "e1",
		RestaurantID: "r1",
		OrderID:      "o1",
		Type:         model.OrderEventTransition,
		Action:       "accept",
		Status:       model.OrderStatusAccepted,
		Version:      2,
		CreatedAt:    time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubjectAndEncoding(t *testing.T) {
	e := sampleEvent()
	assert.Equal(t, "orders.r1.transition", Subject(e))

	raw, err := Encode(e)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MessageOf(e), msg)
	assert.Equal(t, "accepted", msg.Status)
}

func TestDecodeRestoresEvent(t *testing.T) {
	raw, err := Encode(sampleEvent())
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), got)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"id":"e1","orderId":"o1"}`))
	assert.Error(t, err)
}

func TestNATSPublisherSubscribeFeedsHandler(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, testLogger())
	h := &recordingHandler{err: errors.New("render failed")}

	stop, err := p.Subscribe(h)
	require.NoError(t, err)
	assert.Equal(t, "orders.*.*", conn.subscribed)

	raw, err := Encode(sampleEvent())
	require.NoError(t, err)
	conn.handler(&nats.Msg{Subject: "orders.r1.transition", Data: raw})
	conn.handler(&nats.Msg{Subject: "orders.r1.transition", Data: []byte("garbage")})
	conn.handler(&nats.Msg{Subject: "orders.r2.created", Data: raw})

	require.Len(t, h.events, 2)
	assert.Equal(t, sampleEvent(), h.events[0])
	stop()
}

func TestNATSPublisherSubscribeFailure(t *testing.T) {
	conn := &fakeConn{subscribeErr: nats.ErrConnectionClosed}
	_, err := newNATSPublisher(conn, testLogger()).Subscribe(&recordingHandler{})
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
}

func TestCreatedEventOmitsAction(t *testing.T) {
	e := sampleEvent()
	e.Type = model.OrderEventCreated
	e.Action = ""
	raw, err := Encode(e)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"action"`)
}

func TestNATSPublisherPublishes(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, testLogger())

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, []string{"orders.r1.transition"}, conn.subjects)
}

func TestNATSPublisherRetries(t *testing.T) {
	conn := &fakeConn{publishErrs: []error{errors.New("slow consumer"), nil}}
	p := newNATSPublisher(conn, testLogger())
	p.retryWait = time.Millisecond

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Len(t, conn.subjects, 1)
}

func TestNATSPublisherGivesUp(t *testing.T) {
	conn := &fakeConn{flushErr: nats.ErrTimeout}
	p := newNATSPublisher(conn, testLogger())
	p.retryWait = time.Millisecond

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, nats.ErrTimeout)
	assert.Len(t, conn.subjects, publishAttempts)
}

func TestNATSPublisherStopsOnCancel(t *testing.T) {
	conn := &fakeConn{publishErrs: []error{errors.New("down"), errors.New("down"), errors.New("down")}}
	p := newNATSPublisher(conn, testLogger())
	p.retryWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Publish(ctx, sampleEvent())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNATSPublisherClose(t *testing.T) {
	conn := &fakeConn{}
	newNATSPublisher(conn, testLogger()).Close()
	assert.True(t, conn.closed)
}

func TestNewNATSPublisherConnectFailure(t *testing.T) {
	original := connect
	t.Cleanup(func() { connect = original })
	calls := 0
	connect = func(string, ...nats.Option) (natsConn, error) {
		calls++
		return nil, nats.ErrNoServers
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNATSPublisher(ctx, "nats://127.0.0.1:1", testLogger())
	assert.ErrorIs(t, err, nats.ErrNoServers)
	assert.Equal(t, 1, calls)
}

func TestNewNATSPublisherConnects(t *testing.T) {
	original := connect
	t.Cleanup(func() { connect = original })
	conn := &fakeConn{}
	connect = func(string, ...nats.Option) (natsConn, error) { return conn, nil }

	p, err := NewNATSPublisher(context.Background(), "nats://bus:4222", testLogger())
	require.NoError(t, err)
	assert.Same(t, conn, p.conn)
}

func TestModuleWithoutURLDiscards(t *testing.T) {
	res, err := newPublisher(publisherParams{
		Ctx:       context.Background(),
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{},
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	assert.IsType(t, Discard{}, res.Publisher)
	assert.NoError(t, res.Publisher.Publish(context.Background(), sampleEvent()))
}

func TestModuleClosesConnectionOnStop(t *testing.T) {
	original := connect
	t.Cleanup(func() { connect = original })
	conn := &fakeConn{}
	connect = func(string, ...nats.Option) (natsConn, error) { return conn, nil }

	lc := fxtest.NewLifecycle(t)
	_, err := newPublisher(publisherParams{
		Ctx:       context.Background(),
		Lifecycle: lc,
		Config:    &config.Config{NATSURL: "nats://bus:4222"},
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	lc.RequireStart()
	lc.RequireStop()
	assert.True(t, conn.closed)
}
