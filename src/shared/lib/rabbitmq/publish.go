package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
)

var (
	_ Publisher = &QueuePublisher{}
	_ Publisher = NoopPublisher{}
)

type Publisher interface {
	Publish(ctx context.Context, msg amqp091.Publishing) error
}

// PublishJSON marshals the body and publishes it under the given message type
func PublishJSON(ctx context.Context, publisher Publisher, msgType string, body any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message body")
	}

	return publisher.Publish(ctx, amqp091.Publishing{
		Type: msgType,
		Body: jsonBytes,
	})
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, amqp091.Publishing) error {
	return nil
}

func NewQueuePublisher(rabbitMQURL string, queueName string) (*QueuePublisher, error) {
	publisher := &QueuePublisher{
		rabbitMQURL: rabbitMQURL,
		queueName:   queueName,
	}

	err := publisher.connectChannel()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	return publisher, nil
}

type QueuePublisher struct {
	rabbitMQURL string
	queueName   string

	lock    sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func (q *QueuePublisher) connectChannel() error {
	q.closeConnection()

	conn, err := amqp091.Dial(q.rabbitMQURL)
	if err != nil {
		return errors.Wrap(err, "Failed to dial rabbitMQURL")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to create rabbit channel")
	}

	_, err = channel.QueueDeclare(
		q.queueName,
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to declare the queue")
	}

	q.conn = conn
	q.channel = channel
	return nil
}

func (q *QueuePublisher) closeConnection() {
	if q.conn != nil {
		_ = q.conn.Close()
	}

	q.conn = nil
	q.channel = nil
}

func (q *QueuePublisher) publishWithoutRetry(ctx context.Context, msg amqp091.Publishing) error {
	if q.channel == nil {
		return amqp091.ErrClosed
	}

	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp091.Persistent

	return q.channel.PublishWithContext(
		ctx,
		"",
		q.queueName,
		true,
		false,
		msg,
	)
}

func (q *QueuePublisher) Publish(ctx context.Context, msg amqp091.Publishing) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	err := q.publishWithoutRetry(ctx, msg)

	if err != nil {
		publishErr := errors.Wrap(err, "Failed to publish message to rabbitMQ channel")
		shouldReset := errors.Is(err, amqp091.ErrClosed)
		if !shouldReset {
			return publishErr
		}

		err = q.connectChannel()
		if err != nil {
			log.WithError(err).
				Error("Unable to reconnect to rabbitMQ channel")
			return publishErr
		}

		return q.publishWithoutRetry(ctx, msg)
	}

	return nil
}

func (q *QueuePublisher) Close() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.closeConnection()
	return nil
}
