package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// BillingAccount is the billing service's local copy of a workspace, kept
// converged by consuming workspace events. Seat and project counts feed
// plan limits and invoicing.
type BillingAccount struct {
	WorkspaceUUID uuid.UUID `db:"workspace_uuid" json:"workspace_uuid"`
	OwnerUUID     uuid.UUID `db:"owner_uuid" json:"owner_uuid"`
	Plan          string    `db:"plan" json:"plan"`
	Seats         int       `db:"seats" json:"seats"`
	Projects      int       `db:"projects" json:"projects"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

func (r *Repository) Account(ctx context.Context, workspaceUUID uuid.UUID) (*BillingAccount, error) {
	const op = "repository.account.Account"

	const query = `
		SELECT a.workspace_uuid, a.owner_uuid, a.plan, a.seats, a.projects, a.created_at
		FROM "billing_account" a
		WHERE a.workspace_uuid = $1
	`

	var acc BillingAccount
	row := r.db.QueryRowxContext(ctx, query, workspaceUUID)
	if err := row.StructScan(&acc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrWorkspaceNotFound
		}
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: scan account: %w", op, err)
	}

	return &acc, nil
}

// Insert opens the account and records the owner's membership in one
// transaction so the owner's seat can never be double-counted later.
func (r *Repository) Insert(ctx context.Context, acc *BillingAccount) (err error) {
	const op = "repository.account.Insert"

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

	const accountQuery = `
		INSERT INTO "billing_account" (workspace_uuid, owner_uuid, plan, seats, projects)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_uuid) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, accountQuery, acc.WorkspaceUUID, acc.OwnerUUID, acc.Plan, acc.Seats, acc.Projects)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert account: %w", op, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if inserted == 0 {
		return internalErrors.ErrWorkspaceAlreadyExists
	}

	const ownerQuery = `
		INSERT INTO "billing_member" (workspace_uuid, user_uuid)
		VALUES ($1, $2)
		ON CONFLICT (workspace_uuid, user_uuid) DO NOTHING
	`

	if _, err = tx.ExecContext(ctx, ownerQuery, acc.WorkspaceUUID, acc.OwnerUUID); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert owner member: %w", op, err)
	}

	return tx.Commit()
}

// AddSeat records the member under its business key and bumps the seat count
// in one transaction. A redelivered event hits the conflict and changes
// nothing; the count can only move once per member.
func (r *Repository) AddSeat(ctx context.Context, workspaceUUID, userUUID uuid.UUID) (err error) {
	const op = "repository.account.AddSeat"

	const memberQuery = `
		INSERT INTO "billing_member" (workspace_uuid, user_uuid)
		VALUES ($1, $2)
		ON CONFLICT (workspace_uuid, user_uuid) DO NOTHING
	`

	const seatQuery = `UPDATE "billing_account" SET seats = seats + 1 WHERE workspace_uuid = $1`

	return r.recordAndBump(ctx, op, memberQuery, seatQuery, internalErrors.ErrMemberAlreadyAdded, workspaceUUID, userUUID)
}

// AddProject records the project under its business key and bumps the project
// count, with the same once-per-key guarantee as AddSeat.
func (r *Repository) AddProject(ctx context.Context, workspaceUUID, projectUUID uuid.UUID) (err error) {
	const op = "repository.account.AddProject"

	const projectQuery = `
		INSERT INTO "billing_project" (project_uuid, workspace_uuid)
		VALUES ($2, $1)
		ON CONFLICT (project_uuid) DO NOTHING
	`

	const countQuery = `UPDATE "billing_account" SET projects = projects + 1 WHERE workspace_uuid = $1`

	return r.recordAndBump(ctx, op, projectQuery, countQuery, internalErrors.ErrProjectAlreadyAdded, workspaceUUID, projectUUID)
}

func (r *Repository) recordAndBump(
	ctx context.Context,
	op, recordQuery, bumpQuery string,
	duplicateErr error,
	workspaceUUID, entityUUID uuid.UUID,
) (err error) {
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

	res, err := tx.ExecContext(ctx, recordQuery, workspaceUUID, entityUUID)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: record key: %w", op, err)
	}

	recorded, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if recorded == 0 {
		return duplicateErr
	}

	res, err = tx.ExecContext(ctx, bumpQuery, workspaceUUID)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: bump count: %w", op, err)
	}

	bumped, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if bumped == 0 {
		return internalErrors.ErrWorkspaceNotFound
	}

	return tx.Commit()
}
