package webhook

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/services/billing/webhook"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

func TestValidate(t *testing.T) {
	req := &ProviderWebhookRequest{
		Type: "customer.subscription.created",
		Data: ProviderEventData{
			Object: ProviderSubscriptionObject{
				ID:     "sub_123",
				Status: "active",
				Metadata: ProviderMetadata{
					WorkspaceUUID: uuid.New().String(),
				},
			},
		},
	}

	require.NoError(t, req.validateRequest())
}

func TestValidateError(t *testing.T) {
	tCases := []struct {
		name  string
		input *ProviderWebhookRequest
	}{
		{
			name: "empty_type",
			input: &ProviderWebhookRequest{
				Data: ProviderEventData{
					Object: ProviderSubscriptionObject{
						ID:       "sub_123",
						Metadata: ProviderMetadata{WorkspaceUUID: uuid.New().String()},
					},
				},
			},
		},
		{
			name: "empty_subscription_id",
			input: &ProviderWebhookRequest{
				Type: "customer.subscription.created",
				Data: ProviderEventData{
					Object: ProviderSubscriptionObject{
						Metadata: ProviderMetadata{WorkspaceUUID: uuid.New().String()},
					},
				},
			},
		},
		{
			name: "bad_workspace_uuid",
			input: &ProviderWebhookRequest{
				Type: "customer.subscription.created",
				Data: ProviderEventData{
					Object: ProviderSubscriptionObject{
						ID:       "sub_123",
						Metadata: ProviderMetadata{WorkspaceUUID: "not-a-uuid"},
					},
				},
			},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			err := tCase.input.validateRequest()
			require.Error(t, err)
		})
	}
}

type fakeEventHandler struct {
	received []webhook.ProviderEvent
	err      error
}

func (f *fakeEventHandler) HandleProviderEvent(_ context.Context, evt webhook.ProviderEvent) error {
	f.received = append(f.received, evt)
	return f.err
}

func TestHandleWebhook(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)

	workspaceUUID := uuid.New()
	body := fmt.Sprintf(`{
		"type": "customer.subscription.created",
		"data": {
			"object": {
				"id": "sub_123",
				"customer": "cus_1",
				"status": "trialing",
				"current_period_end": 1735689600,
				"plan": {"id": "pro"},
				"metadata": {"workspace_uuid": "%s"}
			}
		}
	}`, workspaceUUID)

	t.Run("acknowledges processed event", func(t *testing.T) {
		events := &fakeEventHandler{}
		h := NewHandler(log, events)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString(body))

		h.HandleWebhook(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, events.received, 1)
		require.Equal(t, "sub_123", events.received[0].Subscription.ID)
		require.Equal(t, workspaceUUID, events.received[0].Subscription.WorkspaceUUID)
		require.Equal(t, "pro", events.received[0].Subscription.Plan)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		events := &fakeEventHandler{}
		h := NewHandler(log, events)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString("not json"))

		h.HandleWebhook(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, events.received)
	})

	t.Run("rejects body without workspace linkage", func(t *testing.T) {
		events := &fakeEventHandler{}
		h := NewHandler(log, events)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment",
			bytes.NewBufferString(`{"type":"customer.subscription.created","data":{"object":{"id":"sub_123"}}}`))

		h.HandleWebhook(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, events.received)
	})
}
