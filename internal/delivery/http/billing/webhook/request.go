package webhook

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/services/billing/webhook"
)

var validate = validator.New()

// ProviderWebhookRequest carries the minimal slice of a payment-provider
// webhook the pipeline needs: a stable subscription id and a status string.
// The workspace linkage travels in the provider-side metadata.
type ProviderWebhookRequest struct {
	Type string            `json:"type" validate:"required"`
	Data ProviderEventData `json:"data"`
}

type ProviderEventData struct {
	Object ProviderSubscriptionObject `json:"object" validate:"required"`
}

type ProviderSubscriptionObject struct {
	ID               string           `json:"id" validate:"required"`
	Customer         string           `json:"customer"`
	Status           string           `json:"status"`
	CurrentPeriodEnd *int64           `json:"current_period_end,omitempty"`
	Plan             ProviderPlan     `json:"plan"`
	Metadata         ProviderMetadata `json:"metadata"`
}

type ProviderPlan struct {
	ID string `json:"id"`
}

type ProviderMetadata struct {
	WorkspaceUUID string `json:"workspace_uuid" validate:"required,uuid"`
}

func (req *ProviderWebhookRequest) validateRequest() error {
	return validate.Struct(req)
}

func (req *ProviderWebhookRequest) toDTO() webhook.ProviderEvent {
	object := req.Data.Object

	return webhook.ProviderEvent{
		Type: req.Type,
		Subscription: webhook.ProviderSubscription{
			ID:               object.ID,
			CustomerID:       object.Customer,
			WorkspaceUUID:    uuid.MustParse(object.Metadata.WorkspaceUUID),
			Plan:             object.Plan.ID,
			Status:           object.Status,
			CurrentPeriodEnd: object.CurrentPeriodEnd,
		},
	}
}
