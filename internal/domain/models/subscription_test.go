package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusFromProvider(t *testing.T) {
	tCases := []struct {
		provider  string
		expStatus SubscriptionStatus
	}{
		{"active", SubscriptionActive},
		{"past_due", SubscriptionPastDue},
		{"trialing", SubscriptionTrialing},
		{"paused", SubscriptionPaused},
		{"unpaid", SubscriptionUnpaid},
		{"incomplete", SubscriptionIncomplete},
		{"incomplete_expired", SubscriptionIncompleteExpired},
		{"canceled", SubscriptionCanceled},
		{"TRIALING", SubscriptionTrialing},
		{"some_future_status", SubscriptionActive},
		{"", SubscriptionActive},
	}

	for _, tCase := range tCases {
		t.Run(tCase.provider, func(t *testing.T) {
			require.Equal(t, tCase.expStatus, StatusFromProvider(tCase.provider))
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	require.True(t, SubscriptionActive.CanTransitionTo(SubscriptionPastDue))
	require.True(t, SubscriptionPastDue.CanTransitionTo(SubscriptionActive))
	require.True(t, SubscriptionTrialing.CanTransitionTo(SubscriptionCanceled))

	// Canceled is terminal.
	require.False(t, SubscriptionCanceled.CanTransitionTo(SubscriptionActive))
	require.False(t, SubscriptionCanceled.CanTransitionTo(SubscriptionCanceled))

	require.False(t, SubscriptionActive.CanTransitionTo(""))
}

func TestTerminal(t *testing.T) {
	require.True(t, SubscriptionCanceled.Terminal())
	require.False(t, SubscriptionActive.Terminal())
	require.False(t, SubscriptionPastDue.Terminal())
}
