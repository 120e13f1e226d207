package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type outboxRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, evt models.Event) error
}

type Repository struct {
	log    logger.Logger
	db     *sqlx.DB
	outbox outboxRepository
}

func New(log logger.Logger, db *sqlx.DB, outbox outboxRepository) *Repository {
	return &Repository{
		log:    log,
		db:     db,
		outbox: outbox,
	}
}

// Create inserts the workspace, its owner membership, and the
// WORKSPACE_CREATED outbox row as one transaction. A crash can never leave
// a workspace without its event or vice versa.
func (r *Repository) Create(ctx context.Context, workspace *models.Workspace) (workspaceUUID uuid.UUID, err error) {
	const op = "repository.workspace.Create"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer func() {
		if err != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				r.log.Error(op, logger.Err(rollBackErr))
				err = errors.Join(err, fmt.Errorf("%s: rollback transaction: %w", op, rollBackErr))
			}
		}
	}()

	const workspaceQuery = `
		INSERT INTO "workspace" (owner_uuid, name, plan)
		VALUES ($1, $2, $3)
		RETURNING uuid
	`

	row := tx.QueryRowContext(ctx, workspaceQuery, workspace.OwnerUUID, workspace.Name, workspace.Plan)
	if err = row.Scan(&workspaceUUID); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: scan result: %w", op, err)
	}

	const memberQuery = `
		INSERT INTO "workspace_member" (workspace_uuid, user_uuid, role)
		VALUES ($1, $2, $3)
	`

	if _, err = tx.ExecContext(ctx, memberQuery, workspaceUUID, workspace.OwnerUUID, models.RoleOwner); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: insert owner member: %w", op, err)
	}

	evt := models.WorkspaceCreatedEvent{
		WorkspaceUUID: workspaceUUID,
		OwnerUUID:     workspace.OwnerUUID,
		Name:          workspace.Name,
		Plan:          workspace.Plan,
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return workspaceUUID, nil
}

// AddMember inserts the membership and its outbox row atomically.
func (r *Repository) AddMember(ctx context.Context, member *models.Member) (err error) {
	const op = "repository.workspace.AddMember"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer func() {
		if err != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				err = errors.Join(err, rollBackErr)
			}
		}
	}()

	const memberQuery = `
		INSERT INTO "workspace_member" (workspace_uuid, user_uuid, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_uuid, user_uuid) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, memberQuery, member.WorkspaceUUID, member.UserUUID, member.Role)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert member: %w", op, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if inserted == 0 {
		return internalErrors.ErrMemberAlreadyAdded
	}

	evt := models.WorkspaceMemberAddedEvent{
		WorkspaceUUID: member.WorkspaceUUID,
		UserUUID:      member.UserUUID,
		Role:          member.Role,
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	return tx.Commit()
}

func (r *Repository) Workspace(ctx context.Context, workspaceUUID uuid.UUID) (*models.Workspace, error) {
	const op = "repository.workspace.Workspace"

	const workspaceQuery = `
		SELECT w.uuid, w.owner_uuid, w.name, w.plan, w.created_at
		FROM "workspace" w
		WHERE w.uuid = $1
	`

	var workspace models.Workspace
	row := r.db.QueryRowxContext(ctx, workspaceQuery, workspaceUUID)
	if err := row.Scan(&workspace.WorkspaceUUID, &workspace.OwnerUUID, &workspace.Name, &workspace.Plan, &workspace.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrWorkspaceNotFound
		}
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: scan workspace: %w", op, err)
	}

	const membersQuery = `
		SELECT m.workspace_uuid, m.user_uuid, m.role, m.added_at
		FROM "workspace_member" m
		WHERE m.workspace_uuid = $1
	`

	rows, err := r.db.QueryxContext(ctx, membersQuery, workspaceUUID)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: execute statement: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var member models.Member
		if err = rows.StructScan(&member); err != nil {
			r.log.Error(op, logger.Err(err))
			return nil, fmt.Errorf("%s: scan member: %w", op, err)
		}
		workspace.Members = append(workspace.Members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate members: %w", op, err)
	}

	return &workspace, nil
}

func (r *Repository) WorkspacesByUUIDs(ctx context.Context, UUIDs []uuid.UUID) (map[uuid.UUID]models.Workspace, error) {
	const op = "repository.workspace.WorkspacesByUUIDs"

	workspacesMap := make(map[uuid.UUID]models.Workspace, len(UUIDs))

	const workspaceQuery = `
		SELECT uuid, owner_uuid, name, plan, created_at
		FROM "workspace"
		WHERE uuid = ANY($1)
	`

	rows, err := r.db.QueryxContext(ctx, workspaceQuery, pq.Array(UUIDs))
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: execute statement: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var workspace models.Workspace
		if err = rows.Scan(&workspace.WorkspaceUUID, &workspace.OwnerUUID, &workspace.Name, &workspace.Plan, &workspace.CreatedAt); err != nil {
			r.log.Error(op, logger.Err(err))
			return nil, fmt.Errorf("%s: scan workspace: %w", op, err)
		}
		workspacesMap[workspace.WorkspaceUUID] = workspace
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate workspaces: %w", op, err)
	}

	if len(workspacesMap) == 0 {
		return nil, internalErrors.ErrWorkspaceNotFound
	}

	return workspacesMap, nil
}

// MemberRole returns the caller's role inside the workspace, used by the
// permission guards.
func (r *Repository) MemberRole(ctx context.Context, workspaceUUID, userUUID uuid.UUID) (models.Role, error) {
	const op = "repository.workspace.MemberRole"

	const query = `
		SELECT m.role
		FROM "workspace_member" m
		WHERE m.workspace_uuid = $1 AND m.user_uuid = $2
	`

	var role models.Role
	row := r.db.QueryRowxContext(ctx, query, workspaceUUID, userUUID)
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", internalErrors.ErrPermissionDenied
		}
		r.log.Error(op, logger.Err(err))
		return "", fmt.Errorf("%s: scan role: %w", op, err)
	}

	return role, nil
}
