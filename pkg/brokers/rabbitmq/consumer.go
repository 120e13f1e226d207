package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume registers a manual-ack consumer on the queue and returns the
// delivery channel. Prefetch is capped so a stuck consumer does not hoard
// the queue.
func (b *Broker) Consume(queue, consumerTag string) (<-chan amqp.Delivery, error) {
	const op = "rabbitmq.Broker.Consume"

	if err := b.ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: qos: %w", op, err)
	}

	deliveries, err := b.ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: consume %q: %w", op, queue, err)
	}

	return deliveries, nil
}
