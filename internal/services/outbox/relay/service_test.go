package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/config"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/internal/services/outbox/relay"
	"github.com/tumbleweedd/workspace_system/internal/services/outbox/relay/mocks"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

func TestProcessOutboxEvents(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)
	ctx := context.Background()

	relayCfg := config.RelayConfig{
		Interval:  15 * time.Second,
		BatchSize: 100,
		LeaseTTL:  time.Minute,
	}

	workspaceCreatedPayload := func(t *testing.T) []byte {
		t.Helper()

		payload, err := json.Marshal(models.WorkspaceCreatedEvent{
			WorkspaceUUID: uuid.New(),
			OwnerUUID:     uuid.New(),
			Name:          "acme",
			Plan:          models.PlanFree,
		})
		require.NoError(t, err)

		return payload
	}

	t.Run("publishes claimed record and marks it processed", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		payload := workspaceCreatedPayload(t)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return([]models.OutboxRecord{
				{ID: 1, EventType: models.WorkspaceCreated, Payload: payload},
			}, nil)
		publisher.EXPECT().
			Publish(gomock.Any(), "workspace.created", payload).
			Return(nil)
		source.EXPECT().
			MarkProcessed(gomock.Any(), int64(1)).
			Return(nil)

		svc := relay.New(log, relayCfg, source, publisher)

		processed, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.NoError(t, err)
		require.Equal(t, 1, processed)
	})

	t.Run("empty claim is a no-op", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return(nil, nil)

		svc := relay.New(log, relayCfg, source, publisher)

		processed, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.NoError(t, err)
		require.Zero(t, processed)
	})

	t.Run("unknown event type stays unprocessed", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return([]models.OutboxRecord{
				{ID: 7, EventType: "ORDER_SHIPPED", Payload: []byte(`{}`)},
			}, nil)

		svc := relay.New(log, relayCfg, source, publisher)

		processed, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.NoError(t, err)
		require.Zero(t, processed)
	})

	t.Run("record is not marked processed when publish fails", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		payload := workspaceCreatedPayload(t)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return([]models.OutboxRecord{
				{ID: 3, EventType: models.WorkspaceCreated, Payload: payload},
			}, nil)
		publisher.EXPECT().
			Publish(gomock.Any(), "workspace.created", payload).
			Return(errors.New("broker unavailable"))

		svc := relay.New(log, relayCfg, source, publisher)

		processed, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.NoError(t, err)
		require.Zero(t, processed)
	})

	t.Run("batch continues past a failing record", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		payload := workspaceCreatedPayload(t)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return([]models.OutboxRecord{
				{ID: 1, EventType: "ORDER_SHIPPED", Payload: []byte(`{}`)},
				{ID: 2, EventType: models.WorkspaceCreated, Payload: payload},
			}, nil)
		publisher.EXPECT().
			Publish(gomock.Any(), "workspace.created", payload).
			Return(nil)
		source.EXPECT().
			MarkProcessed(gomock.Any(), int64(2)).
			Return(nil)

		svc := relay.New(log, relayCfg, source, publisher)

		processed, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.NoError(t, err)
		require.Equal(t, 1, processed)
	})

	t.Run("claim failure aborts the tick", func(t *testing.T) {
		ctl := gomock.NewController(t)
		defer ctl.Finish()

		source := mocks.NewMockoutboxSource(ctl)
		publisher := mocks.NewMockeventPublisher(ctl)

		source.EXPECT().
			Claim(gomock.Any(), relayCfg.BatchSize, gomock.Any(), relayCfg.LeaseTTL).
			Return(nil, errors.New("connection refused"))

		svc := relay.New(log, relayCfg, source, publisher)

		_, err := svc.ProcessOutboxEvents(ctx, relayCfg.BatchSize)
		require.Error(t, err)
	})
}
