package addmember

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/delivery/http/middleware"
	"github.com/tumbleweedd/workspace_system/internal/delivery/http/response"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type memberAdder interface {
	AddMember(ctx context.Context, callerUUID uuid.UUID, member *models.Member) error
}

type Handler struct {
	log logger.Logger

	memberAdder memberAdder
}

func NewHandler(log logger.Logger, memberAdder memberAdder) *Handler {
	return &Handler{
		log:         log,
		memberAdder: memberAdder,
	}
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.workspace.addmember.AddMember"

	callerUUID, ok := middleware.CallerUUID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	workspaceUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "invalid workspace uuid", http.StatusBadRequest)
		return
	}

	var request AddMemberRequest

	if err = json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.log.Error(op, logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = request.validateRequest(); err != nil {
		h.log.Error(op, logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member := request.toDTO(workspaceUUID)
	if err = h.memberAdder.AddMember(r.Context(), callerUUID, &member); err != nil {
		h.log.Error(op, logger.Err(err))
		response.WriteError(w, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusCreated, response.H{
		"workspace_uuid": workspaceUUID.String(),
		"user_uuid":      request.UserUUID,
	}); err != nil {
		h.log.Error(op, logger.Err(err))
	}
}
