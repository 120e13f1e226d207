package create

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tumbleweedd/workspace_system/internal/delivery/http/middleware"
	"github.com/tumbleweedd/workspace_system/internal/delivery/http/response"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type workspaceCreator interface {
	Create(ctx context.Context, workspace *models.Workspace) (string, error)
}

type Handler struct {
	log logger.Logger

	workspaceCreator workspaceCreator
}

func NewHandler(log logger.Logger, workspaceCreator workspaceCreator) *Handler {
	return &Handler{
		log:              log,
		workspaceCreator: workspaceCreator,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.workspace.create.Create"

	callerUUID, ok := middleware.CallerUUID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var request CreateWorkspaceRequest

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

	workspace := request.toDTO(callerUUID)
	workspaceUUID, err := h.workspaceCreator.Create(r.Context(), &workspace)
	if err != nil {
		h.log.Error(op, logger.Err(err))
		response.WriteError(w, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusCreated, response.H{
		"workspace_uuid": workspaceUUID,
	}); err != nil {
		h.log.Error(op, logger.Err(err))
	}
}
