package get

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/delivery/http/response"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type workspaceGetter interface {
	WorkspaceByUUID(ctx context.Context, workspaceUUID uuid.UUID) (*models.Workspace, error)
}

type Handler struct {
	log logger.Logger

	workspaceGetter workspaceGetter
}

func NewHandler(log logger.Logger, workspaceGetter workspaceGetter) *Handler {
	return &Handler{
		log:             log,
		workspaceGetter: workspaceGetter,
	}
}

func (h *Handler) WorkspaceByUUID(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.workspace.get.WorkspaceByUUID"

	workspaceUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "invalid workspace uuid", http.StatusBadRequest)
		return
	}

	workspace, err := h.workspaceGetter.WorkspaceByUUID(r.Context(), workspaceUUID)
	if err != nil {
		h.log.Error(op, logger.Err(err))
		response.WriteError(w, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusOK, workspace); err != nil {
		h.log.Error(op, logger.Err(err))
	}
}
