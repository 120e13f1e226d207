package get

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type fakeCache struct {
	items map[uuid.UUID]*models.Workspace
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[uuid.UUID]*models.Workspace)}
}

func (f *fakeCache) Get(key uuid.UUID) (*models.Workspace, bool) {
	workspace, ok := f.items[key]
	return workspace, ok
}

func (f *fakeCache) Add(key uuid.UUID, value *models.Workspace) bool {
	f.items[key] = value
	return false
}

type fakeWorkspaceGetter struct {
	workspaces map[uuid.UUID]models.Workspace

	calls int
}

func (f *fakeWorkspaceGetter) Workspace(_ context.Context, workspaceUUID uuid.UUID) (*models.Workspace, error) {
	f.calls++

	workspace, ok := f.workspaces[workspaceUUID]
	if !ok {
		return nil, internalErrors.ErrWorkspaceNotFound
	}
	return &workspace, nil
}

func (f *fakeWorkspaceGetter) WorkspacesByUUIDs(_ context.Context, UUIDs []uuid.UUID) (map[uuid.UUID]models.Workspace, error) {
	f.calls++

	found := make(map[uuid.UUID]models.Workspace)
	for _, workspaceUUID := range UUIDs {
		if workspace, ok := f.workspaces[workspaceUUID]; ok {
			found[workspaceUUID] = workspace
		}
	}
	if len(found) == 0 {
		return nil, internalErrors.ErrWorkspaceNotFound
	}
	return found, nil
}

func TestWorkspaceByUUID(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)
	ctx := context.Background()

	workspaceUUID := uuid.New()
	stored := models.Workspace{WorkspaceUUID: workspaceUUID, Name: "acme"}

	t.Run("repository miss populates cache", func(t *testing.T) {
		cache := newFakeCache()
		getter := &fakeWorkspaceGetter{workspaces: map[uuid.UUID]models.Workspace{workspaceUUID: stored}}
		svc := New(log, cache, getter)

		workspace, err := svc.WorkspaceByUUID(ctx, workspaceUUID)
		require.NoError(t, err)
		require.Equal(t, "acme", workspace.Name)
		require.Equal(t, 1, getter.calls)

		// Second read is served from the cache.
		_, err = svc.WorkspaceByUUID(ctx, workspaceUUID)
		require.NoError(t, err)
		require.Equal(t, 1, getter.calls)
	})

	t.Run("unknown workspace propagates not found", func(t *testing.T) {
		cache := newFakeCache()
		getter := &fakeWorkspaceGetter{workspaces: map[uuid.UUID]models.Workspace{}}
		svc := New(log, cache, getter)

		_, err := svc.WorkspaceByUUID(ctx, uuid.New())
		require.ErrorIs(t, err, internalErrors.ErrWorkspaceNotFound)
	})
}

func TestWorkspacesByUUIDs(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)
	ctx := context.Background()

	first := models.Workspace{WorkspaceUUID: uuid.New(), Name: "first"}
	second := models.Workspace{WorkspaceUUID: uuid.New(), Name: "second"}

	t.Run("mixes cached and repository workspaces", func(t *testing.T) {
		cache := newFakeCache()
		cache.Add(first.WorkspaceUUID, &first)

		getter := &fakeWorkspaceGetter{workspaces: map[uuid.UUID]models.Workspace{
			second.WorkspaceUUID: second,
		}}
		svc := New(log, cache, getter)

		workspaces, err := svc.WorkspacesByUUIDs(ctx, []uuid.UUID{first.WorkspaceUUID, second.WorkspaceUUID})
		require.NoError(t, err)
		require.Len(t, workspaces, 2)
	})

	t.Run("fully cached set skips the repository", func(t *testing.T) {
		cache := newFakeCache()
		cache.Add(first.WorkspaceUUID, &first)

		getter := &fakeWorkspaceGetter{}
		svc := New(log, cache, getter)

		workspaces, err := svc.WorkspacesByUUIDs(ctx, []uuid.UUID{first.WorkspaceUUID})
		require.NoError(t, err)
		require.Len(t, workspaces, 1)
		require.Zero(t, getter.calls)
	})

	t.Run("nothing found returns cached subset", func(t *testing.T) {
		cache := newFakeCache()
		getter := &fakeWorkspaceGetter{workspaces: map[uuid.UUID]models.Workspace{}}
		svc := New(log, cache, getter)

		workspaces, err := svc.WorkspacesByUUIDs(ctx, []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		require.Empty(t, workspaces)
	})
}
