package amqp

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// Dispatcher routes a decoded event to the service that applies it.
type Dispatcher func(ctx context.Context, evt models.Event) error

var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Consumer drains one queue with manual acknowledgment:
//   - apply succeeded            -> ack
//   - client-class error (4xx)   -> nack without requeue, lands in the DLQ
//   - server-class error (5xx)   -> nack with requeue, broker redelivers
//
// Poison messages (unknown tag, malformed payload) count as client-class.
type Consumer struct {
	log        logger.Logger
	deliveries <-chan amqp.Delivery
	dispatch   Dispatcher
}

func NewConsumer(log logger.Logger, deliveries <-chan amqp.Delivery, dispatch Dispatcher) *Consumer {
	return &Consumer{
		log:        log,
		deliveries: deliveries,
		dispatch:   dispatch,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	const op = "delivery.amqp.Consumer.Run"

	c.log.Info(op, logger.String("status", "consuming"))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-c.deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}

			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	const op = "delivery.amqp.Consumer.handle"

	eventType := models.EventTypeFromRoutingKey(delivery.RoutingKey)

	evt, err := models.DecodeEvent(eventType, delivery.Body)
	if err != nil {
		c.log.Error(op, logger.Err(err), logger.String("routing_key", delivery.RoutingKey))
		c.nack(delivery, false)
		return
	}

	err = c.dispatch(ctx, evt)
	switch {
	case err == nil:
		if ackErr := delivery.Ack(false); ackErr != nil {
			c.log.Error(op, logger.Err(ackErr))
		}
	case internalErrors.IsClientError(err) || errors.Is(err, models.ErrUnknownEventType):
		c.log.Error(op,
			logger.Err(err),
			logger.String("routing_key", delivery.RoutingKey),
			logger.String("decision", "dead-letter"),
		)
		c.nack(delivery, false)
	default:
		c.log.Error(op,
			logger.Err(err),
			logger.String("routing_key", delivery.RoutingKey),
			logger.String("decision", "requeue"),
		)
		c.nack(delivery, true)
	}
}

func (c *Consumer) nack(delivery amqp.Delivery, requeue bool) {
	const op = "delivery.amqp.Consumer.nack"

	if err := delivery.Nack(false, requeue); err != nil {
		c.log.Error(op, logger.Err(err))
	}
}
