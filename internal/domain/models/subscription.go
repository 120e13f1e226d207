package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionActive            SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue           SubscriptionStatus = "PAST_DUE"
	SubscriptionTrialing          SubscriptionStatus = "TRIALING"
	SubscriptionPaused            SubscriptionStatus = "PAUSED"
	SubscriptionUnpaid            SubscriptionStatus = "UNPAID"
	SubscriptionIncomplete        SubscriptionStatus = "INCOMPLETE"
	SubscriptionIncompleteExpired SubscriptionStatus = "INCOMPLETE_EXPIRED"
	SubscriptionCanceled          SubscriptionStatus = "CANCELED"
)

var providerStatuses = map[string]SubscriptionStatus{
	"active":             SubscriptionActive,
	"past_due":           SubscriptionPastDue,
	"trialing":           SubscriptionTrialing,
	"paused":             SubscriptionPaused,
	"unpaid":             SubscriptionUnpaid,
	"incomplete":         SubscriptionIncomplete,
	"incomplete_expired": SubscriptionIncompleteExpired,
	"canceled":           SubscriptionCanceled,
}

// StatusFromProvider maps a provider status string through the fixed local
// vocabulary. Unrecognized statuses default to ACTIVE.
func StatusFromProvider(s string) SubscriptionStatus {
	if status, ok := providerStatuses[strings.ToLower(s)]; ok {
		return status
	}
	return SubscriptionActive
}

// Terminal reports whether the status accepts no further transitions.
func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionCanceled
}

// CanTransitionTo guards the subscription state machine: a canceled
// subscription is never resurrected by late events.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s.Terminal() {
		return false
	}
	return next != ""
}

// Subscription is keyed by the provider subscription id, which is the
// business key duplicate detection runs on.
type Subscription struct {
	SubscriptionID string             `db:"subscription_id" json:"subscription_id"`
	WorkspaceUUID  uuid.UUID          `db:"workspace_uuid" json:"workspace_uuid"`
	CustomerID     string             `db:"customer_id" json:"customer_id"`
	Plan           PlanType           `db:"plan" json:"plan"`
	Status         SubscriptionStatus `db:"status" json:"status"`
	ExpiresAt      *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
}
