package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"hiring-pipeline/internal/trigger"
)

const (
	defaultQueue   = "hiring_triggers"
	maxPriority    = 10
	publishTimeout = 5 * time.Second
)

// Channel is the publishing half of an AMQP channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQ publishes triggers as persistent JSON messages. Without an exchange
// messages go to the queue directly; with one they are routed by
// "<target>.<type>".
type RabbitMQ struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	queue    string
	log      *zap.Logger
}

// NewRabbitMQPublisher wraps an already opened channel.
func NewRabbitMQPublisher(ch Channel, exchange, queue string, log *zap.Logger) *RabbitMQ {
	if log == nil {
		log = zap.NewNop()
	}
	if queue == "" {
		queue = defaultQueue
	}
	return &RabbitMQ{channel: ch, exchange: exchange, queue: queue, log: log.Named("rabbitmq")}
}

// DialRabbitMQ connects, declares the priority queue and binds it to the
// exchange when one is configured.
func DialRabbitMQ(url, exchange, queue string, log *zap.Logger) (*RabbitMQ, error) {
	if queue == "" {
		queue = defaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if exchange != "" {
		if err := ch.ExchangeDeclare(
			exchange, // name
			"topic",  // kind
			true,     // durable
			false,    // auto-deleted
			false,    // internal
			false,    // no-wait
			nil,      // args
		); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare exchange: %w", err)
		}
	}

	q, err := ch.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-max-priority": int32(maxPriority)},
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if exchange != "" {
		if err := ch.QueueBind(q.Name, "#", exchange, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	r := NewRabbitMQPublisher(ch, exchange, q.Name, log)
	r.conn = conn
	r.log.Info("connected to RabbitMQ", zap.String("queue", q.Name), zap.String("exchange", exchange))
	return r, nil
}

func (r *RabbitMQ) Dispatch(ctx context.Context, triggers []trigger.Trigger) error {
	for _, t := range triggers {
		if err := r.publish(ctx, t); err != nil {
			return fmt.Errorf("publish %s: %w", t.Type, err)
		}
	}
	return nil
}

func (r *RabbitMQ) publish(ctx context.Context, t trigger.Trigger) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := r.queue
	if r.exchange != "" {
		key = t.Target + "." + t.Type
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Priority:     Priority(t.Priority),
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Type:         t.Type,
			Headers: amqp.Table{
				"tenant_id": t.TenantID,
				"target":    t.Target,
				"event":     string(t.Event),
			},
			Body: body,
		},
	)
	if err != nil {
		return err
	}
	r.log.Debug("published trigger", zap.String("type", t.Type), zap.String("routing_key", key))
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Priority maps a trigger priority onto the 0..10 AMQP priority range.
func Priority(p trigger.Priority) uint8 {
	switch p {
	case trigger.PriorityCritical:
		return 9
	case trigger.PriorityHigh:
		return 6
	case trigger.PriorityMedium:
		return 3
	default:
		return 1
	}
}
