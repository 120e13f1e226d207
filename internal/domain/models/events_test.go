package models

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	tCases := []struct {
		eventType EventType
		expKey    string
	}{
		{WorkspaceCreated, "workspace.created"},
		{WorkspaceMemberAdded, "workspace.member.added"},
		{ProjectCreated, "project.created"},
		{SubscriptionCreated, "subscription.created"},
		{SubscriptionUpdated, "subscription.updated"},
		{SubscriptionDeleted, "subscription.deleted"},
	}

	for _, tCase := range tCases {
		t.Run(string(tCase.eventType), func(t *testing.T) {
			require.Equal(t, tCase.expKey, tCase.eventType.RoutingKey())
			require.Equal(t, tCase.eventType, EventTypeFromRoutingKey(tCase.expKey))
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	expiresAt := int64(1735689600)

	tCases := []struct {
		name  string
		event Event
	}{
		{
			name: "workspace_created",
			event: WorkspaceCreatedEvent{
				WorkspaceUUID: uuid.New(),
				OwnerUUID:     uuid.New(),
				Name:          "acme",
				Plan:          PlanPro,
			},
		},
		{
			name: "workspace_member_added",
			event: WorkspaceMemberAddedEvent{
				WorkspaceUUID: uuid.New(),
				UserUUID:      uuid.New(),
				Role:          RoleAdmin,
			},
		},
		{
			name: "project_created",
			event: ProjectCreatedEvent{
				ProjectUUID:   uuid.New(),
				WorkspaceUUID: uuid.New(),
				Name:          "backend",
			},
		},
		{
			name: "subscription_updated",
			event: SubscriptionUpdatedEvent{
				SubscriptionID: "sub_123",
				WorkspaceUUID:  uuid.New(),
				Plan:           PlanEnterprise,
				Status:         SubscriptionPastDue,
				ExpiresAt:      &expiresAt,
			},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			payload, err := json.Marshal(tCase.event)
			require.NoError(t, err)

			decoded, err := DecodeEvent(tCase.event.Type(), payload)
			require.NoError(t, err)
			require.Equal(t, tCase.event, decoded)
			require.Equal(t, tCase.event.BusinessKey(), decoded.BusinessKey())
		})
	}
}

func TestDecodeEventUnknownType(t *testing.T) {
	_, err := DecodeEvent("ORDER_SHIPPED", []byte(`{}`))
	require.ErrorIs(t, err, ErrUnknownEventType)
}

func TestDecodeEventMalformedPayload(t *testing.T) {
	_, err := DecodeEvent(WorkspaceCreated, []byte(`not json`))
	require.Error(t, err)
}

type noopSubscriptionHandler struct{}

func (noopSubscriptionHandler) HandleSubscriptionCreated(context.Context, SubscriptionCreatedEvent) error {
	return nil
}
func (noopSubscriptionHandler) HandleSubscriptionUpdated(context.Context, SubscriptionUpdatedEvent) error {
	return nil
}
func (noopSubscriptionHandler) HandleSubscriptionDeleted(context.Context, SubscriptionDeletedEvent) error {
	return nil
}

func TestDispatchSubscriptionEventRejectsForeignGroup(t *testing.T) {
	err := DispatchSubscriptionEvent(context.Background(), noopSubscriptionHandler{}, WorkspaceCreatedEvent{})
	require.ErrorIs(t, err, ErrUnknownEventType)
}
