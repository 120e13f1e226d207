package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// fakeAcknowledger records the broker decision made for a delivery.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func subscriptionCreatedDelivery(t *testing.T, ack amqp.Acknowledger) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(models.SubscriptionCreatedEvent{
		SubscriptionID: "sub_1",
		WorkspaceUUID:  uuid.New(),
		Plan:           models.PlanPro,
		Status:         models.SubscriptionActive,
	})
	require.NoError(t, err)

	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "subscription.created",
		Body:         body,
	}
}

func TestHandleAckPolicy(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)
	ctx := context.Background()

	t.Run("successful dispatch acks", func(t *testing.T) {
		ack := &fakeAcknowledger{}

		consumer := NewConsumer(log, nil, func(context.Context, models.Event) error {
			return nil
		})
		consumer.handle(ctx, subscriptionCreatedDelivery(t, ack))

		require.True(t, ack.acked)
		require.False(t, ack.nacked)
	})

	t.Run("client-class error dead-letters", func(t *testing.T) {
		ack := &fakeAcknowledger{}

		consumer := NewConsumer(log, nil, func(context.Context, models.Event) error {
			return internalErrors.ErrWorkspaceNotFound
		})
		consumer.handle(ctx, subscriptionCreatedDelivery(t, ack))

		require.True(t, ack.nacked)
		require.False(t, ack.requeue)
	})

	t.Run("server-class error requeues", func(t *testing.T) {
		ack := &fakeAcknowledger{}

		consumer := NewConsumer(log, nil, func(context.Context, models.Event) error {
			return errors.New("database unavailable")
		})
		consumer.handle(ctx, subscriptionCreatedDelivery(t, ack))

		require.True(t, ack.nacked)
		require.True(t, ack.requeue)
	})

	t.Run("poison message dead-letters without dispatch", func(t *testing.T) {
		ack := &fakeAcknowledger{}

		dispatched := false
		consumer := NewConsumer(log, nil, func(context.Context, models.Event) error {
			dispatched = true
			return nil
		})
		consumer.handle(ctx, amqp.Delivery{
			Acknowledger: ack,
			RoutingKey:   "subscription.created",
			Body:         []byte("not json"),
		})

		require.False(t, dispatched)
		require.True(t, ack.nacked)
		require.False(t, ack.requeue)
	})

	t.Run("unknown routing key dead-letters", func(t *testing.T) {
		ack := &fakeAcknowledger{}

		consumer := NewConsumer(log, nil, func(context.Context, models.Event) error {
			return nil
		})
		consumer.handle(ctx, amqp.Delivery{
			Acknowledger: ack,
			RoutingKey:   "order.shipped",
			Body:         []byte(`{}`),
		})

		require.True(t, ack.nacked)
		require.False(t, ack.requeue)
	})
}

func TestRunStopsOnClosedChannel(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)

	deliveries := make(chan amqp.Delivery)
	close(deliveries)

	consumer := NewConsumer(log, deliveries, func(context.Context, models.Event) error {
		return nil
	})

	err := consumer.Run(context.Background())
	require.ErrorIs(t, err, ErrDeliveriesClosed)
}
