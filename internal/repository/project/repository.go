package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

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

// Create inserts the project and its PROJECT_CREATED outbox row atomically.
func (r *Repository) Create(ctx context.Context, project *models.Project) (projectUUID uuid.UUID, err error) {
	const op = "repository.project.Create"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer func() {
		if err != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				err = errors.Join(err, rollBackErr)
			}
		}
	}()

	const projectQuery = `
		INSERT INTO "project" (workspace_uuid, name)
		VALUES ($1, $2)
		RETURNING uuid
	`

	row := tx.QueryRowContext(ctx, projectQuery, project.WorkspaceUUID, project.Name)
	if err = row.Scan(&projectUUID); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: scan result: %w", op, err)
	}

	evt := models.ProjectCreatedEvent{
		ProjectUUID:   projectUUID,
		WorkspaceUUID: project.WorkspaceUUID,
		Name:          project.Name,
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return projectUUID, nil
}

func (r *Repository) Project(ctx context.Context, projectUUID uuid.UUID) (*models.Project, error) {
	const op = "repository.project.Project"

	const query = `
		SELECT p.uuid, p.workspace_uuid, p.name, p.created_at
		FROM "project" p
		WHERE p.uuid = $1
	`

	var project models.Project
	row := r.db.QueryRowxContext(ctx, query, projectUUID)
	if err := row.Scan(&project.ProjectUUID, &project.WorkspaceUUID, &project.Name, &project.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrProjectNotFound
		}
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: scan project: %w", op, err)
	}

	return &project, nil
}
