package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/config"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks
type outboxSource interface {
	Claim(ctx context.Context, batchSize int, owner string, lease time.Duration) ([]models.OutboxRecord, error)
	MarkProcessed(ctx context.Context, id int64) error
	PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Service drains the outbox table: claim a batch, publish each record,
// mark it processed. Delivery is at-least-once; a crash between publish and
// mark leaves the row to be republished once its lease expires.
type Service struct {
	log        logger.Logger
	relayCfg   config.RelayConfig
	outbox     outboxSource
	publisher  eventPublisher
	instanceID string
}

func New(
	log logger.Logger,
	relayCfg config.RelayConfig,
	outbox outboxSource,
	publisher eventPublisher,
) *Service {
	return &Service{
		log:        log,
		relayCfg:   relayCfg,
		outbox:     outbox,
		publisher:  publisher,
		instanceID: uuid.NewString(),
	}
}

// ProcessOutboxEvents publishes up to batchSize unprocessed records, oldest
// first, and returns how many were marked processed. Per-record failures are
// logged and skipped; the batch never aborts. Running against a fully
// processed table is a no-op.
func (s *Service) ProcessOutboxEvents(ctx context.Context, batchSize int) (int, error) {
	const op = "services.outbox.relay.ProcessOutboxEvents"

	records, err := s.outbox.Claim(ctx, batchSize, s.instanceID, s.relayCfg.LeaseTTL)
	if err != nil {
		return 0, fmt.Errorf("%s: claim batch: %w", op, err)
	}

	var processed int
	for _, record := range records {
		if err = s.processRecord(ctx, record); err != nil {
			if errors.Is(err, models.ErrUnknownEventType) {
				s.log.Error(op,
					logger.Err(err),
					logger.Int("record_id", int(record.ID)),
					logger.String("event_type", string(record.EventType)),
				)
				continue
			}

			s.log.Error(op, logger.Err(err), logger.Int("record_id", int(record.ID)))
			continue
		}

		processed++
	}

	if len(records) > 0 {
		s.log.InfoContext(ctx, op,
			logger.Int("claimed", len(records)),
			logger.Int("processed", processed),
		)
	}

	return processed, nil
}

func (s *Service) processRecord(ctx context.Context, record models.OutboxRecord) error {
	// Decoding validates both the tag and the payload shape. Unknown tags and
	// malformed payloads stay unprocessed and surface on every tick until
	// someone intervenes.
	evt, err := models.DecodeEvent(record.EventType, record.Payload)
	if err != nil {
		return err
	}

	if err = s.publisher.Publish(ctx, evt.Type().RoutingKey(), record.Payload); err != nil {
		return fmt.Errorf("publish record %d: %w", record.ID, err)
	}

	if err = s.outbox.MarkProcessed(ctx, record.ID); err != nil {
		return fmt.Errorf("mark record %d processed: %w", record.ID, err)
	}

	return nil
}

// Run drives the relay on a fixed cadence until the context is canceled.
// Ticks execute sequentially in this goroutine, so a slow batch cannot
// overlap the next one, and no cursor survives between ticks: each batch is
// re-derived from the processed flag.
func (s *Service) Run(ctx context.Context) error {
	const op = "services.outbox.relay.Run"

	s.log.Info(op,
		logger.String("interval", s.relayCfg.Interval.String()),
		logger.Int("batch_size", s.relayCfg.BatchSize),
	)

	ticker := time.NewTicker(s.relayCfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ProcessOutboxEvents(ctx, s.relayCfg.BatchSize); err != nil {
				// Transient failure: nothing was marked, the next tick retries.
				s.log.Error(op, logger.Err(err))
			}

			s.purge(ctx)
		}
	}
}

func (s *Service) purge(ctx context.Context) {
	const op = "services.outbox.relay.purge"

	if s.relayCfg.Retention <= 0 {
		return
	}

	purged, err := s.outbox.PurgeProcessed(ctx, s.relayCfg.Retention)
	if err != nil {
		s.log.Error(op, logger.Err(err))
		return
	}

	if purged > 0 {
		s.log.Info(op, logger.Int("purged", int(purged)))
	}
}
