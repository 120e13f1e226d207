package apply

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// fakeStore keeps subscriptions in a map and mimics the repository's
// not-found/already-exists behavior.
type fakeStore struct {
	subs map[string]*models.Subscription

	inserted []string
	updated  []string
}

func newFakeStore(subs ...*models.Subscription) *fakeStore {
	store := &fakeStore{subs: make(map[string]*models.Subscription)}
	for _, sub := range subs {
		store.subs[sub.SubscriptionID] = sub
	}
	return store
}

func (f *fakeStore) Subscription(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	sub, ok := f.subs[subscriptionID]
	if !ok {
		return nil, internalErrors.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeStore) Insert(_ context.Context, sub *models.Subscription) error {
	if _, ok := f.subs[sub.SubscriptionID]; ok {
		return internalErrors.ErrSubscriptionExists
	}
	f.subs[sub.SubscriptionID] = sub
	f.inserted = append(f.inserted, sub.SubscriptionID)
	return nil
}

func (f *fakeStore) Update(_ context.Context, sub *models.Subscription) error {
	if _, ok := f.subs[sub.SubscriptionID]; !ok {
		return internalErrors.ErrSubscriptionNotFound
	}
	f.subs[sub.SubscriptionID] = sub
	f.updated = append(f.updated, sub.SubscriptionID)
	return nil
}

var testLog = logger.NewSlogLogger(logger.EnvLocal)

func TestHandleSubscriptionCreated(t *testing.T) {
	ctx := context.Background()

	evt := models.SubscriptionCreatedEvent{
		SubscriptionID: "sub_1",
		WorkspaceUUID:  uuid.New(),
		Plan:           models.PlanPro,
		Status:         models.SubscriptionActive,
	}

	t.Run("inserts unseen subscription", func(t *testing.T) {
		store := newFakeStore()
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionCreated(ctx, evt))
		require.Equal(t, []string{"sub_1"}, store.inserted)
		require.Equal(t, models.PlanPro, store.subs["sub_1"].Plan)
	})

	t.Run("redelivered event is a no-op", func(t *testing.T) {
		store := newFakeStore(&models.Subscription{
			SubscriptionID: "sub_1",
			Status:         models.SubscriptionActive,
		})
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionCreated(ctx, evt))
		require.Empty(t, store.inserted)
	})
}

func TestHandleSubscriptionUpdated(t *testing.T) {
	ctx := context.Background()

	evt := models.SubscriptionUpdatedEvent{
		SubscriptionID: "sub_1",
		WorkspaceUUID:  uuid.New(),
		Plan:           models.PlanEnterprise,
		Status:         models.SubscriptionPastDue,
	}

	t.Run("applies update to known subscription", func(t *testing.T) {
		store := newFakeStore(&models.Subscription{
			SubscriptionID: "sub_1",
			Plan:           models.PlanPro,
			Status:         models.SubscriptionActive,
		})
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionUpdated(ctx, evt))
		require.Equal(t, []string{"sub_1"}, store.updated)
		require.Equal(t, models.SubscriptionPastDue, store.subs["sub_1"].Status)
		require.Equal(t, models.PlanEnterprise, store.subs["sub_1"].Plan)
	})

	t.Run("missing subscription self-heals by default", func(t *testing.T) {
		store := newFakeStore()
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionUpdated(ctx, evt))
		require.Equal(t, []string{"sub_1"}, store.inserted)
		require.Equal(t, models.SubscriptionPastDue, store.subs["sub_1"].Status)
	})

	t.Run("missing subscription fails under fail policy", func(t *testing.T) {
		store := newFakeStore()
		svc := New(testLog, store, map[models.EventType]MissingPolicy{
			models.SubscriptionUpdated: MissingPolicyFail,
		})

		err := svc.HandleSubscriptionUpdated(ctx, evt)
		require.ErrorIs(t, err, internalErrors.ErrSubscriptionNotFound)
		require.Empty(t, store.inserted)
	})

	t.Run("canceled subscription is not resurrected", func(t *testing.T) {
		store := newFakeStore(&models.Subscription{
			SubscriptionID: "sub_1",
			Status:         models.SubscriptionCanceled,
		})
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionUpdated(ctx, evt))
		require.Empty(t, store.updated)
		require.Equal(t, models.SubscriptionCanceled, store.subs["sub_1"].Status)
	})
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	ctx := context.Background()

	evt := models.SubscriptionDeletedEvent{
		SubscriptionID: "sub_1",
		WorkspaceUUID:  uuid.New(),
	}

	t.Run("cancels known subscription", func(t *testing.T) {
		store := newFakeStore(&models.Subscription{
			SubscriptionID: "sub_1",
			Status:         models.SubscriptionActive,
		})
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionDeleted(ctx, evt))
		require.Equal(t, models.SubscriptionCanceled, store.subs["sub_1"].Status)
	})

	t.Run("missing subscription self-heals as canceled", func(t *testing.T) {
		store := newFakeStore()
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionDeleted(ctx, evt))
		require.Equal(t, []string{"sub_1"}, store.inserted)
		require.Equal(t, models.SubscriptionCanceled, store.subs["sub_1"].Status)
	})

	t.Run("redelivered delete is a no-op", func(t *testing.T) {
		store := newFakeStore(&models.Subscription{
			SubscriptionID: "sub_1",
			Status:         models.SubscriptionCanceled,
		})
		svc := New(testLog, store, nil)

		require.NoError(t, svc.HandleSubscriptionDeleted(ctx, evt))
		require.Empty(t, store.updated)
	})
}
