package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type Repository struct {
	db *sqlx.DB

	log logger.Logger
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{db: db, log: log}
}

// Insert writes the event row inside the caller's transaction so the domain
// write and its event are committed or rolled back together.
func (r *Repository) Insert(ctx context.Context, tx *sqlx.Tx, evt models.Event) error {
	const op = "repository.outbox.Insert"

	payload, err := json.Marshal(evt)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	const query = `INSERT INTO "outbox" (event_type, payload) VALUES ($1, $2)`

	if _, err = tx.ExecContext(ctx, query, evt.Type(), payload); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	return nil
}

// Claim atomically leases up to batchSize unprocessed rows, oldest first.
// SKIP LOCKED plus the lease stamp keeps two relay instances from publishing
// the same row; an expired lease makes the row claimable again after a crash
// mid-publish.
func (r *Repository) Claim(ctx context.Context, batchSize int, owner string, lease time.Duration) ([]models.OutboxRecord, error) {
	const op = "repository.outbox.Claim"

	const query = `
		UPDATE "outbox"
		SET claimed_by = $1, claimed_until = now() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM "outbox"
			WHERE processed = FALSE
			  AND (claimed_until IS NULL OR claimed_until < now())
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_type, payload, processed, created_at, processed_at
	`

	rows, err := r.db.QueryxContext(ctx, query, owner, lease.Seconds(), batchSize)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: claim batch: %w", op, err)
	}
	defer rows.Close()

	var records []models.OutboxRecord
	for rows.Next() {
		var rec models.OutboxRecord
		if err = rows.StructScan(&rec); err != nil {
			r.log.Error(op, logger.Err(err))
			return nil, fmt.Errorf("%s: scan record: %w", op, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate records: %w", op, err)
	}

	return records, nil
}

// MarkProcessed flips the record into its final state. The processed flag is
// the only cursor the relay has; nothing is kept in memory between ticks.
func (r *Repository) MarkProcessed(ctx context.Context, id int64) error {
	const op = "repository.outbox.MarkProcessed"

	const query = `
		UPDATE "outbox"
		SET processed = TRUE, processed_at = now(), claimed_by = NULL, claimed_until = NULL
		WHERE id = $1 AND processed = FALSE
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: update record %d: %w", op, id, err)
	}

	return nil
}

// PurgeProcessed removes processed rows older than the retention window.
func (r *Repository) PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error) {
	const op = "repository.outbox.PurgeProcessed"

	const query = `
		DELETE FROM "outbox"
		WHERE processed = TRUE AND processed_at < now() - make_interval(secs => $1)
	`

	res, err := r.db.ExecContext(ctx, query, olderThan.Seconds())
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return 0, fmt.Errorf("%s: delete: %w", op, err)
	}

	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return purged, nil
}
