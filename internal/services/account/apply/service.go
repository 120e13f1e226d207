package apply

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/internal/repository/account"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type accountStore interface {
	Account(ctx context.Context, workspaceUUID uuid.UUID) (*account.BillingAccount, error)
	Insert(ctx context.Context, acc *account.BillingAccount) error
	AddSeat(ctx context.Context, workspaceUUID, userUUID uuid.UUID) error
	AddProject(ctx context.Context, workspaceUUID, projectUUID uuid.UUID) error
}

// Service applies workspace events to the billing service's account store.
// Workspace events hard-fail on a missing account: a member or project event
// for an unknown workspace means the pipeline is broken upstream, and hiding
// that behind self-healing would mask it.
type Service struct {
	log   logger.Logger
	store accountStore
}

func New(log logger.Logger, store accountStore) *Service {
	return &Service{log: log, store: store}
}

var _ models.WorkspaceEventHandler = (*Service)(nil)

func (s *Service) HandleWorkspaceCreated(ctx context.Context, evt models.WorkspaceCreatedEvent) error {
	const op = "services.account.apply.HandleWorkspaceCreated"

	acc := &account.BillingAccount{
		WorkspaceUUID: evt.WorkspaceUUID,
		OwnerUUID:     evt.OwnerUUID,
		Plan:          string(evt.Plan),
		Seats:         1,
	}

	if err := s.store.Insert(ctx, acc); err != nil {
		if errors.Is(err, internalErrors.ErrWorkspaceAlreadyExists) {
			s.log.InfoContext(ctx, op,
				logger.String("workspace_uuid", evt.WorkspaceUUID.String()),
				logger.String("result", "duplicate, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// HandleWorkspaceMemberAdded bumps the seat count at most once per member:
// the store records the business key, so a redelivered event is a no-op
// instead of a silent double count.
func (s *Service) HandleWorkspaceMemberAdded(ctx context.Context, evt models.WorkspaceMemberAddedEvent) error {
	const op = "services.account.apply.HandleWorkspaceMemberAdded"

	if err := s.store.AddSeat(ctx, evt.WorkspaceUUID, evt.UserUUID); err != nil {
		if errors.Is(err, internalErrors.ErrMemberAlreadyAdded) {
			s.log.InfoContext(ctx, op,
				logger.String("workspace_uuid", evt.WorkspaceUUID.String()),
				logger.String("user_uuid", evt.UserUUID.String()),
				logger.String("result", "duplicate, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) HandleProjectCreated(ctx context.Context, evt models.ProjectCreatedEvent) error {
	const op = "services.account.apply.HandleProjectCreated"

	if err := s.store.AddProject(ctx, evt.WorkspaceUUID, evt.ProjectUUID); err != nil {
		if errors.Is(err, internalErrors.ErrProjectAlreadyAdded) {
			s.log.InfoContext(ctx, op,
				logger.String("project_uuid", evt.ProjectUUID.String()),
				logger.String("result", "duplicate, skipped"),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
