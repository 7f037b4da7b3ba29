// Package broker publishes lifecycle events to RabbitMQ so downstream
// consumers (kitchen display, notifications) can react to orders.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bistro-app/api/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const (
	// Exchange is the durable topic exchange every event is published to.
	// Routing keys are event types, e.g. "order.placed".
	Exchange = "bistro.events"

	dialTimeout    = 5 * time.Second
	publishTimeout = 2 * time.Second
	dialRetries    = 5
	maxRetryDelay  = 30 * time.Second
)

// ErrUnavailable is returned by Publish while the broker link is down. The
// background watcher keeps reconnecting; Publish never dials.
var ErrUnavailable = errors.New("rabbitmq unavailable")

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// link is one live connection and its channel. closed is closed as soon as
// either of them goes away.
type link struct {
	ch     channel
	conn   io.Closer
	closed <-chan struct{}
}

type dialFunc func() (*link, error)

// Publisher is an events.Publisher backed by one AMQP channel.
type Publisher struct {
	dial       dialFunc
	logger     log.FieldLogger
	retryDelay time.Duration

	mu   sync.Mutex
	link *link

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to url, retrying with a linear backoff, and declares the
// exchange. After that a watcher re-establishes the link whenever the
// connection or the channel closes.
func Dial(url string, logger log.FieldLogger) (*Publisher, error) {
	p := newPublisher(func() (*link, error) { return dialAMQP(url) }, logger, 2*time.Second)

	var err error
	for i := 0; i < dialRetries; i++ {
		var l *link
		if l, err = p.dial(); err == nil {
			p.start(l)
			return p, nil
		}
		if i < dialRetries-1 {
			wait := time.Duration(i+1) * p.retryDelay
			logger.WithError(err).WithField("retry_in", wait.String()).Warn("rabbitmq connect failed")
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialRetries, err)
}

func newPublisher(dial dialFunc, logger log.FieldLogger, retryDelay time.Duration) *Publisher {
	return &Publisher{
		dial:       dial,
		logger:     logger,
		retryDelay: retryDelay,
		done:       make(chan struct{}),
	}
}

func dialAMQP(url string) (*link, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	closed := make(chan struct{})
	go func() {
		select {
		case <-connClosed:
		case <-chClosed:
		}
		close(closed)
	}()
	return &link{ch: ch, conn: conn, closed: closed}, nil
}

func (p *Publisher) start(l *link) {
	p.mu.Lock()
	p.link = l
	p.mu.Unlock()
	go p.watch(l)
}

// watch waits for l to close, then redials with a growing delay until a new
// link is up or the publisher is closed.
func (p *Publisher) watch(l *link) {
	for {
		select {
		case <-p.done:
			return
		case <-l.closed:
		}

		p.mu.Lock()
		if p.link == l {
			p.link = nil
		}
		p.mu.Unlock()
		l.conn.Close()
		p.logger.Warn("rabbitmq link closed, reconnecting")

		next, ok := p.redial()
		if !ok {
			return
		}
		l = next
	}
}

func (p *Publisher) redial() (*link, bool) {
	wait := p.retryDelay
	for {
		select {
		case <-p.done:
			return nil, false
		case <-time.After(wait):
		}

		l, err := p.dial()
		if err != nil {
			p.logger.WithError(err).WithField("retry_in", wait.String()).Warn("rabbitmq reconnect failed")
			wait = min(wait*2, maxRetryDelay)
			continue
		}

		p.mu.Lock()
		select {
		case <-p.done:
			p.mu.Unlock()
			l.conn.Close()
			return nil, false
		default:
		}
		p.link = l
		p.mu.Unlock()
		p.logger.Info("rabbitmq link re-established")
		return l, true
	}
}

// Publish sends e as a persistent JSON message. While the link is down it
// fails fast with ErrUnavailable.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	msg, err := buildPublishing(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	l := p.link
	p.mu.Unlock()
	if l == nil || l.ch.IsClosed() {
		return fmt.Errorf("publish %s: %w", e.Type, ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := l.ch.PublishWithContext(ctx, Exchange, e.Type, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	p.logger.WithFields(log.Fields{
		"routing_key": e.Type,
		"size":        len(msg.Body),
	}).Debug("event published")
	return nil
}

// Close stops the watcher and closes the connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	l := p.link
	p.link = nil
	p.mu.Unlock()
	if l == nil {
		return nil
	}
	return l.conn.Close()
}

func buildPublishing(e events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}, nil
}
