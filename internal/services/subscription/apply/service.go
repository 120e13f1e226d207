package apply

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type subscriptionStore interface {
	Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	Insert(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
}

// MissingPolicy names what a consumer does with an update-type event whose
// entity is not locally known: synthesize the missing created state, or fail
// loudly and let the message dead-letter. The policy is explicit per event
// type; silence is never an option.
type MissingPolicy string

const (
	MissingPolicySelfHeal MissingPolicy = "self_heal"
	MissingPolicyFail     MissingPolicy = "fail"
)

// DefaultPolicies: billing state on the workspace side must converge even if
// the created event was lost, so subscription updates and deletes self-heal.
func DefaultPolicies() map[models.EventType]MissingPolicy {
	return map[models.EventType]MissingPolicy{
		models.SubscriptionUpdated: MissingPolicySelfHeal,
		models.SubscriptionDeleted: MissingPolicySelfHeal,
	}
}

// Service applies subscription events to the workspace service's local
// store. Deliveries are at-least-once, so every handler is idempotent with
// respect to the business key.
type Service struct {
	log      logger.Logger
	store    subscriptionStore
	policies map[models.EventType]MissingPolicy
}

func New(log logger.Logger, store subscriptionStore, policies map[models.EventType]MissingPolicy) *Service {
	if policies == nil {
		policies = DefaultPolicies()
	}

	return &Service{
		log:      log,
		store:    store,
		policies: policies,
	}
}

var _ models.SubscriptionEventHandler = (*Service)(nil)

func (s *Service) HandleSubscriptionCreated(ctx context.Context, evt models.SubscriptionCreatedEvent) error {
	const op = "services.subscription.apply.HandleSubscriptionCreated"

	sub := &models.Subscription{
		SubscriptionID: evt.SubscriptionID,
		WorkspaceUUID:  evt.WorkspaceUUID,
		Plan:           evt.Plan,
		Status:         evt.Status,
		ExpiresAt:      timeFromUnix(evt.ExpiresAt),
	}

	err := s.store.Insert(ctx, sub)
	if err != nil {
		// Redelivered created event: the row exists, nothing to do.
		if errors.Is(err, internalErrors.ErrSubscriptionExists) {
			s.log.InfoContext(ctx, op,
				logger.String("subscription_id", evt.SubscriptionID),
				logger.String("result", "duplicate, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) HandleSubscriptionUpdated(ctx context.Context, evt models.SubscriptionUpdatedEvent) error {
	const op = "services.subscription.apply.HandleSubscriptionUpdated"

	current, err := s.store.Subscription(ctx, evt.SubscriptionID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrSubscriptionNotFound) {
			return s.onMissing(ctx, op, evt.Type(), models.SubscriptionCreatedEvent(evt), err)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !current.Status.CanTransitionTo(evt.Status) {
		// A canceled subscription is never resurrected by late events.
		s.log.WarnContext(ctx, op,
			logger.String("subscription_id", evt.SubscriptionID),
			logger.String("current_status", string(current.Status)),
			logger.String("event_status", string(evt.Status)),
			logger.String("result", "transition rejected"),
		)
		return nil
	}

	current.Plan = evt.Plan
	current.Status = evt.Status
	current.ExpiresAt = timeFromUnix(evt.ExpiresAt)

	if err = s.store.Update(ctx, current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) HandleSubscriptionDeleted(ctx context.Context, evt models.SubscriptionDeletedEvent) error {
	const op = "services.subscription.apply.HandleSubscriptionDeleted"

	current, err := s.store.Subscription(ctx, evt.SubscriptionID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrSubscriptionNotFound) {
			created := models.SubscriptionCreatedEvent{
				SubscriptionID: evt.SubscriptionID,
				WorkspaceUUID:  evt.WorkspaceUUID,
				Plan:           models.PlanFree,
				Status:         models.SubscriptionCanceled,
			}
			return s.onMissing(ctx, op, evt.Type(), created, err)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if current.Status.Terminal() {
		s.log.InfoContext(ctx, op,
			logger.String("subscription_id", evt.SubscriptionID),
			logger.String("result", "already canceled, skipped"),
		)
		return nil
	}

	current.Status = models.SubscriptionCanceled

	if err = s.store.Update(ctx, current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// onMissing applies the configured policy for an event whose entity is not
// locally known: synthesize the created state, or propagate not-found.
func (s *Service) onMissing(ctx context.Context, op string, t models.EventType, created models.SubscriptionCreatedEvent, notFound error) error {
	policy, ok := s.policies[t]
	if !ok {
		policy = MissingPolicyFail
	}

	if policy == MissingPolicyFail {
		return fmt.Errorf("%s: %w", op, notFound)
	}

	s.log.WarnContext(ctx, op,
		logger.String("subscription_id", created.SubscriptionID),
		logger.String("result", "missing locally, self-healing"),
	)

	return s.HandleSubscriptionCreated(ctx, created)
}

func timeFromUnix(unix *int64) *time.Time {
	if unix == nil {
		return nil
	}
	t := time.Unix(*unix, 0).UTC()
	return &t
}
