package addmember

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type memberAdder interface {
	AddMember(ctx context.Context, member *models.Member) error
	MemberRole(ctx context.Context, workspaceUUID, userUUID uuid.UUID) (models.Role, error)
}

type MemberAdditionService struct {
	log logger.Logger

	memberAdder memberAdder
}

func New(log logger.Logger, memberAdder memberAdder) *MemberAdditionService {
	return &MemberAdditionService{
		log:         log,
		memberAdder: memberAdder,
	}
}

// AddMember lets workspace owners and admins add members. The guard is a
// plain role comparison against the caller's membership row.
func (s *MemberAdditionService) AddMember(ctx context.Context, callerUUID uuid.UUID, member *models.Member) error {
	const op = "services.workspace.addmember.AddMember"

	callerRole, err := s.memberAdder.MemberRole(ctx, member.WorkspaceUUID, callerUUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if callerRole != models.RoleOwner && callerRole != models.RoleAdmin {
		s.log.WarnContext(ctx, op,
			logger.String("caller_uuid", callerUUID.String()),
			logger.String("caller_role", string(callerRole)),
		)
		return internalErrors.ErrPermissionDenied
	}

	if member.Role == "" {
		member.Role = models.RoleMember
	}

	if err = s.memberAdder.AddMember(ctx, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
