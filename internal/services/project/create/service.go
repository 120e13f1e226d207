package create

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type projectCreator interface {
	Create(ctx context.Context, project *models.Project) (uuid.UUID, error)
}

type membershipChecker interface {
	MemberRole(ctx context.Context, workspaceUUID, userUUID uuid.UUID) (models.Role, error)
}

type ProjectCreationService struct {
	log logger.Logger

	projectCreator projectCreator
	membership     membershipChecker
}

func New(log logger.Logger, projectCreator projectCreator, membership membershipChecker) *ProjectCreationService {
	return &ProjectCreationService{
		log:            log,
		projectCreator: projectCreator,
		membership:     membership,
	}
}

// Create requires the caller to be a member of the workspace; any role may
// create projects.
func (s *ProjectCreationService) Create(ctx context.Context, callerUUID uuid.UUID, project *models.Project) (string, error) {
	const op = "services.project.create.Create"

	if _, err := s.membership.MemberRole(ctx, project.WorkspaceUUID, callerUUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	projectUUID, err := s.projectCreator.Create(ctx, project)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	project.ProjectUUID = projectUUID

	return projectUUID.String(), nil
}
