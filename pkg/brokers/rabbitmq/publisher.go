package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type Publisher struct {
	ch       *amqp.Channel
	exchange string

	log logger.Logger
}

func NewPublisher(log logger.Logger, broker *Broker, exchange string) *Publisher {
	return &Publisher{
		ch:       broker.Channel(),
		exchange: exchange,
		log:      log,
	}
}

// Publish sends a persistent JSON message to the exchange under the given
// routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	const op = "rabbitmq.Publisher.Publish"

	err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Error(op, logger.Err(err), logger.String("routing_key", routingKey))
		return fmt.Errorf("%s: publish %q: %w", op, routingKey, err)
	}

	p.log.DebugContext(ctx, op, logger.String("routing_key", routingKey))

	return nil
}
