package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	applog "fintrack/internal/log"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher announces changes to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
	Close() error
}

// NopPublisher drops every change. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }
func (NopPublisher) Close() error                          { return nil }

// AMQPPublisher publishes changes to a durable direct exchange bound to one
// queue, with the queue name as routing key. It also consumes from that queue.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	log      *applog.Logger
}

// NewAMQPPublisher dials url and declares the exchange, queue and binding.
func NewAMQPPublisher(url, exchange, queue string, logger *applog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
		log:      logger.WithComponent(applog.ComponentEvents),
	}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return p, nil
}

func (p *AMQPPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, c Change) error {
	body, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    c.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	p.log.DebugContext(ctx, "published change", "entity", c.Entity, "id", c.ID, "action", c.Action)
	return nil
}

// Consume delivers changes to h until ctx is done or the channel closes.
func (p *AMQPPublisher) Consume(ctx context.Context, h Handler) error {
	deliveries, err := p.channel.Consume(p.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	p.log.InfoContext(ctx, "consuming changes", "queue", p.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			switch Dispatch(ctx, d.Body, h, p.log) {
			case Ack:
				err = d.Ack(false)
			case Reject:
				err = d.Nack(false, false)
			case Requeue:
				err = d.Nack(false, true)
			}
			if err != nil {
				p.log.ErrorContext(ctx, "acknowledge delivery", applog.FieldError, err)
			}
		}
	}
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
