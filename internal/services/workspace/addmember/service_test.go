package addmember

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type fakeMemberAdder struct {
	roles map[uuid.UUID]models.Role

	added []*models.Member
}

func (f *fakeMemberAdder) AddMember(_ context.Context, member *models.Member) error {
	f.added = append(f.added, member)
	return nil
}

func (f *fakeMemberAdder) MemberRole(_ context.Context, _, userUUID uuid.UUID) (models.Role, error) {
	role, ok := f.roles[userUUID]
	if !ok {
		return "", internalErrors.ErrPermissionDenied
	}
	return role, nil
}

func TestAddMember(t *testing.T) {
	log := logger.NewSlogLogger(logger.EnvLocal)
	ctx := context.Background()

	workspaceUUID := uuid.New()
	owner := uuid.New()
	admin := uuid.New()
	member := uuid.New()
	outsider := uuid.New()

	newService := func() (*MemberAdditionService, *fakeMemberAdder) {
		adder := &fakeMemberAdder{roles: map[uuid.UUID]models.Role{
			owner:  models.RoleOwner,
			admin:  models.RoleAdmin,
			member: models.RoleMember,
		}}
		return New(log, adder), adder
	}

	t.Run("owner can add members", func(t *testing.T) {
		svc, adder := newService()

		err := svc.AddMember(ctx, owner, &models.Member{WorkspaceUUID: workspaceUUID, UserUUID: uuid.New()})
		require.NoError(t, err)
		require.Len(t, adder.added, 1)
	})

	t.Run("admin can add members", func(t *testing.T) {
		svc, adder := newService()

		err := svc.AddMember(ctx, admin, &models.Member{WorkspaceUUID: workspaceUUID, UserUUID: uuid.New()})
		require.NoError(t, err)
		require.Len(t, adder.added, 1)
	})

	t.Run("plain member cannot add members", func(t *testing.T) {
		svc, adder := newService()

		err := svc.AddMember(ctx, member, &models.Member{WorkspaceUUID: workspaceUUID, UserUUID: uuid.New()})
		require.ErrorIs(t, err, internalErrors.ErrPermissionDenied)
		require.Empty(t, adder.added)
	})

	t.Run("non-member cannot add members", func(t *testing.T) {
		svc, adder := newService()

		err := svc.AddMember(ctx, outsider, &models.Member{WorkspaceUUID: workspaceUUID, UserUUID: uuid.New()})
		require.ErrorIs(t, err, internalErrors.ErrPermissionDenied)
		require.Empty(t, adder.added)
	})

	t.Run("empty role defaults to member", func(t *testing.T) {
		svc, adder := newService()

		err := svc.AddMember(ctx, owner, &models.Member{WorkspaceUUID: workspaceUUID, UserUUID: uuid.New()})
		require.NoError(t, err)
		require.Equal(t, models.RoleMember, adder.added[0].Role)
	})
}
