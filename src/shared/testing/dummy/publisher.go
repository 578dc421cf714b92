package dummy

import (
	"context"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/stem-separator/src/shared/lib/rabbitmq"
)

var _ rabbitmq.Publisher = &Publisher{}

type Publisher struct {
	Unavailable bool

	lock     sync.Mutex
	messages []amqp091.Publishing
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, msg amqp091.Publishing) error {
	if p.Unavailable {
		return NetworkFailure
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	p.messages = append(p.messages, msg)
	return nil
}

func (p *Publisher) Messages() []amqp091.Publishing {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]amqp091.Publishing{}, p.messages...)
}
