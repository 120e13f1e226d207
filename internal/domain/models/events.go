package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownEventType marks an outbox row whose tag no publisher or consumer
// recognizes. The relay logs such rows and leaves them unprocessed.
var ErrUnknownEventType = errors.New("unknown event type")

// Event is the closed set of payloads crossing the broker. The business key
// identifies the entity for duplicate detection on the consumer side; it is
// never the broker message id.
type Event interface {
	Type() EventType
	BusinessKey() string
}

type WorkspaceCreatedEvent struct {
	WorkspaceUUID uuid.UUID `json:"workspace_uuid"`
	OwnerUUID     uuid.UUID `json:"owner_uuid"`
	Name          string    `json:"name"`
	Plan          PlanType  `json:"plan"`
}

func (e WorkspaceCreatedEvent) Type() EventType     { return WorkspaceCreated }
func (e WorkspaceCreatedEvent) BusinessKey() string { return e.WorkspaceUUID.String() }

type WorkspaceMemberAddedEvent struct {
	WorkspaceUUID uuid.UUID `json:"workspace_uuid"`
	UserUUID      uuid.UUID `json:"user_uuid"`
	Role          Role      `json:"role"`
}

func (e WorkspaceMemberAddedEvent) Type() EventType { return WorkspaceMemberAdded }
func (e WorkspaceMemberAddedEvent) BusinessKey() string {
	return e.WorkspaceUUID.String() + ":" + e.UserUUID.String()
}

type ProjectCreatedEvent struct {
	ProjectUUID   uuid.UUID `json:"project_uuid"`
	WorkspaceUUID uuid.UUID `json:"workspace_uuid"`
	Name          string    `json:"name"`
}

func (e ProjectCreatedEvent) Type() EventType     { return ProjectCreated }
func (e ProjectCreatedEvent) BusinessKey() string { return e.ProjectUUID.String() }

type SubscriptionCreatedEvent struct {
	SubscriptionID string             `json:"subscription_id"`
	WorkspaceUUID  uuid.UUID          `json:"workspace_uuid"`
	Plan           PlanType           `json:"plan"`
	Status         SubscriptionStatus `json:"status"`
	ExpiresAt      *int64             `json:"expires_at,omitempty"`
}

func (e SubscriptionCreatedEvent) Type() EventType     { return SubscriptionCreated }
func (e SubscriptionCreatedEvent) BusinessKey() string { return e.SubscriptionID }

type SubscriptionUpdatedEvent struct {
	SubscriptionID string             `json:"subscription_id"`
	WorkspaceUUID  uuid.UUID          `json:"workspace_uuid"`
	Plan           PlanType           `json:"plan"`
	Status         SubscriptionStatus `json:"status"`
	ExpiresAt      *int64             `json:"expires_at,omitempty"`
}

func (e SubscriptionUpdatedEvent) Type() EventType     { return SubscriptionUpdated }
func (e SubscriptionUpdatedEvent) BusinessKey() string { return e.SubscriptionID }

type SubscriptionDeletedEvent struct {
	SubscriptionID string    `json:"subscription_id"`
	WorkspaceUUID  uuid.UUID `json:"workspace_uuid"`
}

func (e SubscriptionDeletedEvent) Type() EventType     { return SubscriptionDeleted }
func (e SubscriptionDeletedEvent) BusinessKey() string { return e.SubscriptionID }

// DecodeEvent maps a tagged payload to its concrete type. Adding a tag here
// without extending the matching handler interface below breaks the build,
// so a new event kind cannot silently fall through to log-and-drop.
func DecodeEvent(t EventType, payload []byte) (Event, error) {
	switch t {
	case WorkspaceCreated:
		return decodeInto[WorkspaceCreatedEvent](t, payload)
	case WorkspaceMemberAdded:
		return decodeInto[WorkspaceMemberAddedEvent](t, payload)
	case ProjectCreated:
		return decodeInto[ProjectCreatedEvent](t, payload)
	case SubscriptionCreated:
		return decodeInto[SubscriptionCreatedEvent](t, payload)
	case SubscriptionUpdated:
		return decodeInto[SubscriptionUpdatedEvent](t, payload)
	case SubscriptionDeleted:
		return decodeInto[SubscriptionDeletedEvent](t, payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
}

func decodeInto[E Event](t EventType, payload []byte) (Event, error) {
	var evt E
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return evt, nil
}

// SubscriptionEventHandler is implemented by the workspace-side consumer.
type SubscriptionEventHandler interface {
	HandleSubscriptionCreated(ctx context.Context, evt SubscriptionCreatedEvent) error
	HandleSubscriptionUpdated(ctx context.Context, evt SubscriptionUpdatedEvent) error
	HandleSubscriptionDeleted(ctx context.Context, evt SubscriptionDeletedEvent) error
}

// WorkspaceEventHandler is implemented by the billing-side consumer.
type WorkspaceEventHandler interface {
	HandleWorkspaceCreated(ctx context.Context, evt WorkspaceCreatedEvent) error
	HandleWorkspaceMemberAdded(ctx context.Context, evt WorkspaceMemberAddedEvent) error
	HandleProjectCreated(ctx context.Context, evt ProjectCreatedEvent) error
}

// DispatchSubscriptionEvent routes a decoded event to the handler method that
// knows its shape.
func DispatchSubscriptionEvent(ctx context.Context, h SubscriptionEventHandler, evt Event) error {
	switch e := evt.(type) {
	case SubscriptionCreatedEvent:
		return h.HandleSubscriptionCreated(ctx, e)
	case SubscriptionUpdatedEvent:
		return h.HandleSubscriptionUpdated(ctx, e)
	case SubscriptionDeletedEvent:
		return h.HandleSubscriptionDeleted(ctx, e)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, evt.Type())
	}
}

func DispatchWorkspaceEvent(ctx context.Context, h WorkspaceEventHandler, evt Event) error {
	switch e := evt.(type) {
	case WorkspaceCreatedEvent:
		return h.HandleWorkspaceCreated(ctx, e)
	case WorkspaceMemberAddedEvent:
		return h.HandleWorkspaceMemberAdded(ctx, e)
	case ProjectCreatedEvent:
		return h.HandleProjectCreated(ctx, e)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, evt.Type())
	}
}
