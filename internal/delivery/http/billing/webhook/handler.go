package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tumbleweedd/workspace_system/internal/delivery/http/response"
	"github.com/tumbleweedd/workspace_system/internal/services/billing/webhook"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type providerEventHandler interface {
	HandleProviderEvent(ctx context.Context, evt webhook.ProviderEvent) error
}

type Handler struct {
	log logger.Logger

	events providerEventHandler
}

func NewHandler(log logger.Logger, events providerEventHandler) *Handler {
	return &Handler{
		log:    log,
		events: events,
	}
}

// HandleWebhook accepts provider notifications. A non-2xx answer makes the
// provider redeliver, so only genuine processing failures return one;
// events we do not care about are acknowledged with 200.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.billing.webhook.HandleWebhook"

	var request ProviderWebhookRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.log.Error(op, logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := request.validateRequest(); err != nil {
		h.log.Error(op, logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.events.HandleProviderEvent(r.Context(), request.toDTO()); err != nil {
		h.log.Error(op, logger.Err(err))
		response.WriteError(w, err)
		return
	}

	if err := response.WriteJSON(w, http.StatusOK, response.H{
		"received": true,
	}); err != nil {
		h.log.Error(op, logger.Err(err))
	}
}
