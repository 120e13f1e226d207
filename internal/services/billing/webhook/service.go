package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// Provider event types the billing service reacts to. Anything else is
// acknowledged and ignored; the provider sends far more than we care about.
const (
	ProviderSubscriptionCreated = "customer.subscription.created"
	ProviderSubscriptionUpdated = "customer.subscription.updated"
	ProviderSubscriptionDeleted = "customer.subscription.deleted"
)

// ProviderEvent is the slice of a payment-provider webhook the billing
// service needs: a stable entity id and a status/type string.
type ProviderEvent struct {
	Type         string
	Subscription ProviderSubscription
}

type ProviderSubscription struct {
	ID               string
	CustomerID       string
	WorkspaceUUID    uuid.UUID
	Plan             string
	Status           string
	CurrentPeriodEnd *int64
}

type subscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, sub *models.Subscription) error
	Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
}

var planTypes = map[string]models.PlanType{
	"free":       models.PlanFree,
	"pro":        models.PlanPro,
	"enterprise": models.PlanEnterprise,
}

// Service turns provider webhooks into subscription writes. Each write also
// records the outbox event inside the repository transaction, which is what
// eventually converges the workspace service.
type Service struct {
	log logger.Logger

	subscriptions subscriptionRepository
}

func New(log logger.Logger, subscriptions subscriptionRepository) *Service {
	return &Service{
		log:           log,
		subscriptions: subscriptions,
	}
}

func (s *Service) HandleProviderEvent(ctx context.Context, evt ProviderEvent) error {
	const op = "services.billing.webhook.HandleProviderEvent"

	switch evt.Type {
	case ProviderSubscriptionCreated:
		return s.handleCreated(ctx, evt.Subscription)
	case ProviderSubscriptionUpdated:
		return s.handleUpdated(ctx, evt.Subscription)
	case ProviderSubscriptionDeleted:
		return s.handleDeleted(ctx, evt.Subscription)
	default:
		s.log.DebugContext(ctx, op,
			logger.String("event_type", evt.Type),
			logger.String("result", "ignored"),
		)
		return nil
	}
}

func (s *Service) handleCreated(ctx context.Context, provider ProviderSubscription) error {
	const op = "services.billing.webhook.handleCreated"

	sub := toSubscription(provider)

	if err := s.subscriptions.Create(ctx, sub); err != nil {
		// Providers redeliver webhooks; an existing row is not an error.
		if errors.Is(err, internalErrors.ErrSubscriptionExists) {
			s.log.InfoContext(ctx, op,
				logger.String("subscription_id", provider.ID),
				logger.String("result", "duplicate, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) handleUpdated(ctx context.Context, provider ProviderSubscription) error {
	const op = "services.billing.webhook.handleUpdated"

	current, err := s.subscriptions.Subscription(ctx, provider.ID)
	if err != nil {
		// The provider is the source of truth for billing state: an update
		// for a subscription we never saw self-heals into a create.
		if errors.Is(err, internalErrors.ErrSubscriptionNotFound) {
			s.log.WarnContext(ctx, op,
				logger.String("subscription_id", provider.ID),
				logger.String("result", "missing locally, self-healing"),
			)
			return s.handleCreated(ctx, provider)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	next := models.StatusFromProvider(provider.Status)
	if !current.Status.CanTransitionTo(next) {
		s.log.WarnContext(ctx, op,
			logger.String("subscription_id", provider.ID),
			logger.String("current_status", string(current.Status)),
			logger.String("event_status", string(next)),
			logger.String("result", "transition rejected"),
		)
		return nil
	}

	sub := toSubscription(provider)

	if err = s.subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) handleDeleted(ctx context.Context, provider ProviderSubscription) error {
	const op = "services.billing.webhook.handleDeleted"

	current, err := s.subscriptions.Subscription(ctx, provider.ID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrSubscriptionNotFound) {
			s.log.WarnContext(ctx, op,
				logger.String("subscription_id", provider.ID),
				logger.String("result", "unknown subscription, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	// A redelivered delete must not re-cancel the row: that would emit a
	// fresh SUBSCRIPTION_DELETED outbox event on every redelivery.
	if current.Status.Terminal() {
		s.log.InfoContext(ctx, op,
			logger.String("subscription_id", provider.ID),
			logger.String("result", "already canceled, skipped"),
		)
		return nil
	}

	sub := toSubscription(provider)

	if err = s.subscriptions.Delete(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func toSubscription(provider ProviderSubscription) *models.Subscription {
	plan, ok := planTypes[provider.Plan]
	if !ok {
		plan = models.PlanFree
	}

	var expiresAt *time.Time
	if provider.CurrentPeriodEnd != nil {
		t := time.Unix(*provider.CurrentPeriodEnd, 0).UTC()
		expiresAt = &t
	}

	return &models.Subscription{
		SubscriptionID: provider.ID,
		WorkspaceUUID:  provider.WorkspaceUUID,
		CustomerID:     provider.CustomerID,
		Plan:           plan,
		Status:         models.StatusFromProvider(provider.Status),
		ExpiresAt:      expiresAt,
	}
}
