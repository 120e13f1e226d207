package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// Broker owns one AMQP connection and one channel. Exchanges and queues are
// declared durable; every queue gets a companion dead-letter queue bound to
// the dead-letter exchange.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	log logger.Logger
}

func New(log logger.Logger, url string) (*Broker, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: open channel: %w", op, err)
	}

	log.Info("connected to rabbitmq")

	return &Broker{
		conn: conn,
		ch:   ch,
		log:  log,
	}, nil
}

func (b *Broker) Channel() *amqp.Channel {
	return b.ch
}

func (b *Broker) Close() error {
	if err := b.ch.Close(); err != nil {
		return err
	}

	return b.conn.Close()
}

// DeclareTopology sets up a durable topic exchange plus its dead-letter
// exchange, declares the queue with dead-lettering enabled, and binds the
// queue to the given routing keys.
func (b *Broker) DeclareTopology(exchange, queue string, routingKeys []string) error {
	const op = "rabbitmq.DeclareTopology"

	dlx := exchange + ".dlx"
	dlq := queue + ".dlq"

	if err := b.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: declare exchange: %w", op, err)
	}

	if err := b.ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: declare dead-letter exchange: %w", op, err)
	}

	if _, err := b.ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: declare dead-letter queue: %w", op, err)
	}

	if err := b.ch.QueueBind(dlq, "#", dlx, false, nil); err != nil {
		return fmt.Errorf("%s: bind dead-letter queue: %w", op, err)
	}

	_, err := b.ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlx,
	})
	if err != nil {
		return fmt.Errorf("%s: declare queue: %w", op, err)
	}

	for _, key := range routingKeys {
		if err = b.ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("%s: bind queue to %q: %w", op, key, err)
		}
	}

	b.log.Info("rabbitmq topology declared",
		logger.String("exchange", exchange),
		logger.String("queue", queue),
	)

	return nil
}
