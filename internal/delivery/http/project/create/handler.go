package create

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/delivery/http/middleware"
	"github.com/tumbleweedd/workspace_system/internal/delivery/http/response"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type projectCreator interface {
	Create(ctx context.Context, callerUUID uuid.UUID, project *models.Project) (string, error)
}

type Handler struct {
	log logger.Logger

	projectCreator projectCreator
}

func NewHandler(log logger.Logger, projectCreator projectCreator) *Handler {
	return &Handler{
		log:            log,
		projectCreator: projectCreator,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.project.create.Create"

	callerUUID, ok := middleware.CallerUUID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var request CreateProjectRequest

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

	project := request.toDTO()
	projectUUID, err := h.projectCreator.Create(r.Context(), callerUUID, &project)
	if err != nil {
		h.log.Error(op, logger.Err(err))
		response.WriteError(w, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusCreated, response.H{
		"project_uuid": projectUUID,
	}); err != nil {
		h.log.Error(op, logger.Err(err))
	}
}
