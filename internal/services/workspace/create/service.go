package create

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type workspaceCreator interface {
	Create(ctx context.Context, workspace *models.Workspace) (uuid.UUID, error)
}

type WorkspaceCreationService struct {
	log logger.Logger

	workspaceCreator workspaceCreator
}

func New(log logger.Logger, workspaceCreator workspaceCreator) *WorkspaceCreationService {
	return &WorkspaceCreationService{
		log:              log,
		workspaceCreator: workspaceCreator,
	}
}

func (s *WorkspaceCreationService) Create(ctx context.Context, workspace *models.Workspace) (string, error) {
	const op = "services.workspace.create.Create"

	if workspace.Plan == "" {
		workspace.Plan = models.PlanFree
	}

	workspaceUUID, err := s.workspaceCreator.Create(ctx, workspace)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	workspace.WorkspaceUUID = workspaceUUID

	return workspaceUUID.String(), nil
}
