package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/semaphore"

	"paghetta/internal/core"
	applog "paghetta/internal/log"
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
	maxBackoff  = 30 * time.Second
	// publishTimeout bounds a whole publish, reconnects included.
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
	heartbeat      = 10 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client publishes chore.recorded messages to a direct exchange.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	// sem guards conn and channel. Unlike a mutex, waiting on it gives up
	// when the caller's context ends.
	semOnce sync.Once
	sem     *semaphore.Weighted
	conn    *amqp091.Connection
	channel *amqp091.Channel

	breaker breaker
}

// NewClient connects to the broker and declares the exchange and queue,
// giving up after connectTimeout or when ctx ends.
func NewClient(ctx context.Context, url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// dialer opens the TCP connection under ctx and makes the AMQP handshake
// fail at ctx's deadline; amqp091 clears the deadline once the handshake
// is done.
func dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

func (c *Client) connect(ctx context.Context) error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      dialer(ctx),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("dial AMQP: %w (%v)", ctxErr, err)
		}
		return fmt.Errorf("dial AMQP: %w", err)
	}
	// A broker that stalls after the handshake must not outlive ctx either.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name.
	err = c.channel.QueueBind(
		c.queueName,
		c.queueName,
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *Client) lock(ctx context.Context) error {
	c.semOnce.Do(func() { c.sem = semaphore.NewWeighted(1) })
	return c.sem.Acquire(ctx, 1)
}

func (c *Client) unlock() { c.sem.Release(1) }

// ensureConnected redials when the connection was dropped. Caller holds the
// lock.
func (c *Client) ensureConnected(ctx context.Context) error {
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return nil
	}
	c.closeLocked()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}
		if lastErr = c.connect(ctx); lastErr == nil {
			slog.InfoContext(ctx, "Reconnected to AMQP broker", "attempt", attempt+1)
			return nil
		}
		slog.WarnContext(ctx, "AMQP reconnect failed", "attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}

// PublishChoreRecorded announces a persisted event. It returns within
// publishTimeout, or earlier when ctx ends, even while the broker is
// unreachable.
func (c *Client) PublishChoreRecorded(ctx context.Context, e core.ChoreEvent, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if !c.breaker.allow() {
		return fmt.Errorf("publish chore.recorded: %w", ErrCircuitOpen)
	}

	msg := NewChoreRecordedMessage(e, ref)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.lock(ctx); err != nil {
		return fmt.Errorf("wait for publisher: %w", err)
	}
	defer c.unlock()

	if err := c.ensureConnected(ctx); err != nil {
		c.breaker.failure()
		return fmt.Errorf("connect: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			MessageId:    msg.ID,
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         "chore.recorded",
			Body:         body,
		},
	)
	if err != nil {
		c.breaker.failure()
		if isConnectionError(err) {
			c.closeLocked()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.breaker.success()

	slog.InfoContext(ctx, "Published chore.recorded message",
		applog.FieldComponent, applog.ComponentAMQP,
		"message_id", msg.ID,
		"ref", ref,
		"person", e.Person,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	if err := c.lock(context.Background()); err != nil {
		return err
	}
	defer c.unlock()
	c.closeLocked()
	return nil
}
