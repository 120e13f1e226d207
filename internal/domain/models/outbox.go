package models

import (
	"encoding/json"
	"strings"
	"time"
)

type EventType string

const (
	WorkspaceCreated     EventType = "WORKSPACE_CREATED"
	WorkspaceMemberAdded EventType = "WORKSPACE_MEMBER_ADDED"
	ProjectCreated       EventType = "PROJECT_CREATED"
	SubscriptionCreated  EventType = "SUBSCRIPTION_CREATED"
	SubscriptionUpdated  EventType = "SUBSCRIPTION_UPDATED"
	SubscriptionDeleted  EventType = "SUBSCRIPTION_DELETED"
)

// RoutingKey derives the broker routing key from the event tag:
// WORKSPACE_CREATED -> workspace.created.
func (t EventType) RoutingKey() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", ".")
}

// EventTypeFromRoutingKey is the inverse mapping, used by consumers to
// recover the tag from a delivery.
func EventTypeFromRoutingKey(key string) EventType {
	return EventType(strings.ReplaceAll(strings.ToUpper(key), ".", "_"))
}

// OutboxRecord is written in the same transaction as the domain change it
// describes. A record is either unprocessed (processed=false, processed_at
// null) or processed (processed=true, processed_at set); there is no third
// state.
type OutboxRecord struct {
	ID          int64           `db:"id" json:"id"`
	EventType   EventType       `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Processed   bool            `db:"processed" json:"processed"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
