package get

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type workspaceGetter interface {
	Workspace(ctx context.Context, workspaceUUID uuid.UUID) (*models.Workspace, error)
	WorkspacesByUUIDs(ctx context.Context, UUIDs []uuid.UUID) (map[uuid.UUID]models.Workspace, error)
}

type cache interface {
	Get(key uuid.UUID) (*models.Workspace, bool)
	Add(key uuid.UUID, value *models.Workspace) bool
}

type WorkspaceRetrievalService struct {
	log   logger.Logger
	cache cache

	workspaceGetter workspaceGetter
}

func New(log logger.Logger, cache cache, workspaceGetter workspaceGetter) *WorkspaceRetrievalService {
	return &WorkspaceRetrievalService{
		log:             log,
		cache:           cache,
		workspaceGetter: workspaceGetter,
	}
}

func (s *WorkspaceRetrievalService) WorkspaceByUUID(ctx context.Context, workspaceUUID uuid.UUID) (*models.Workspace, error) {
	const op = "services.workspace.get.WorkspaceByUUID"

	if workspace, ok := s.cache.Get(workspaceUUID); ok && workspace != nil {
		s.log.DebugContext(ctx, op, logger.String("source", "cache"))
		return workspace, nil
	}

	workspace, err := s.workspaceGetter.Workspace(ctx, workspaceUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.Add(workspaceUUID, workspace)

	return workspace, nil
}

func (s *WorkspaceRetrievalService) WorkspacesByUUIDs(ctx context.Context, UUIDs []uuid.UUID) ([]models.Workspace, error) {
	const op = "services.workspace.get.WorkspacesByUUIDs"

	result := make([]models.Workspace, 0, len(UUIDs))
	notInCache := make([]uuid.UUID, 0, len(UUIDs))

	for _, workspaceUUID := range UUIDs {
		if workspace, ok := s.cache.Get(workspaceUUID); ok && workspace != nil {
			result = append(result, *workspace)
			continue
		}
		notInCache = append(notInCache, workspaceUUID)
	}

	s.log.InfoContext(ctx, op,
		logger.Int("items in cache", len(result)),
		logger.Int("items not in cache", len(notInCache)),
	)

	if len(notInCache) == 0 {
		return result, nil
	}

	workspacesMap, err := s.workspaceGetter.WorkspacesByUUIDs(ctx, notInCache)
	if err != nil {
		if errors.Is(err, internalErrors.ErrWorkspaceNotFound) {
			return result, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, workspace := range workspacesMap {
		workspace := workspace
		result = append(result, workspace)
		_ = s.cache.Add(workspace.WorkspaceUUID, &workspace)
	}

	return result, nil
}
