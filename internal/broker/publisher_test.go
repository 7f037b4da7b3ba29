package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bistro-app/api/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPublishing(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := events.Event{Type: "order.placed", OccurredAt: at, Payload: map[string]string{"id": "abc"}}

	msg, err := buildPublishing(e)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "order.placed", msg.Type)
	assert.Equal(t, at, msg.Timestamp)

	var decoded struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "order.placed", decoded.Type)
	assert.Equal(t, "abc", decoded.Payload["id"])
}

func TestBuildPublishing_Unmarshalable(t *testing.T) {
	_, err := buildPublishing(events.Event{Type: "x", Payload: make(chan int)})
	assert.Error(t, err)
}

type fakeChannel struct {
	mu        sync.Mutex
	closed    bool
	published []string
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, _ amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.published = append(c.published, exchange+"/"+key)
	return nil
}

func (c *fakeChannel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.published...)
}

type fakeConn struct {
	closeCount atomic.Int32
}

func (c *fakeConn) Close() error {
	c.closeCount.Add(1)
	return nil
}

// fakeLink returns a link plus a func that breaks it the way a channel
// exception does: the channel reports closed and the close signal fires.
func fakeLink() (*link, *fakeChannel, *fakeConn, func()) {
	ch := &fakeChannel{}
	conn := &fakeConn{}
	closed := make(chan struct{})
	var once sync.Once
	breakLink := func() {
		once.Do(func() {
			ch.mu.Lock()
			ch.closed = true
			ch.mu.Unlock()
			close(closed)
		})
	}
	return &link{ch: ch, conn: conn, closed: closed}, ch, conn, breakLink
}

func testEvent() events.Event {
	return events.New("order.placed", map[string]string{"id": "abc"})
}

func TestPublish_UsesLiveLink(t *testing.T) {
	l, ch, _, _ := fakeLink()
	p := newPublisher(func() (*link, error) { return nil, errors.New("unused") }, logrus.New(), time.Millisecond)
	p.start(l)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	assert.Equal(t, []string{Exchange + "/order.placed"}, ch.keys())
}

func TestPublish_ReconnectsAfterChannelClose(t *testing.T) {
	first, _, firstConn, breakFirst := fakeLink()
	second, secondCh, _, _ := fakeLink()
	dials := make(chan *link, 1)
	dials <- second
	p := newPublisher(func() (*link, error) {
		select {
		case l := <-dials:
			return l, nil
		default:
			return nil, errors.New("connection refused")
		}
	}, logrus.New(), time.Millisecond)
	p.start(first)
	defer p.Close()

	breakFirst()
	err := p.Publish(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrUnavailable)

	require.Eventually(t, func() bool {
		return p.Publish(context.Background(), testEvent()) == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{Exchange + "/order.placed"}, secondCh.keys())
	assert.Equal(t, int32(1), firstConn.closeCount.Load())
}

func TestPublish_DoesNotWaitForSlowDial(t *testing.T) {
	l, _, _, breakLink := fakeLink()
	release := make(chan struct{})
	dialing := make(chan struct{}, 1)
	p := newPublisher(func() (*link, error) {
		select {
		case dialing <- struct{}{}:
		default:
		}
		<-release
		return nil, errors.New("dial timeout")
	}, logrus.New(), time.Millisecond)
	p.start(l)
	defer func() {
		p.Close()
		close(release)
	}()

	breakLink()
	select {
	case <-dialing:
	case <-time.After(time.Second):
		t.Fatal("watcher never redialed")
	}

	start := time.Now()
	err := p.Publish(context.Background(), testEvent())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestClose_StopsWatcher(t *testing.T) {
	l, _, conn, breakLink := fakeLink()
	var dialCount atomic.Int32
	p := newPublisher(func() (*link, error) {
		dialCount.Add(1)
		return nil, errors.New("connection refused")
	}, logrus.New(), time.Millisecond)
	p.start(l)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, int32(1), conn.closeCount.Load())

	breakLink()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, dialCount.Load())
	assert.ErrorIs(t, p.Publish(context.Background(), testEvent()), ErrUnavailable)
}
