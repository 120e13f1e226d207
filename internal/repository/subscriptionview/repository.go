package subscriptionview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// Repository is the workspace service's local copy of billing state, kept
// converged by consuming subscription events. Lookups run on the provider
// subscription id, the business key, never on broker message ids.
type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

func (r *Repository) Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	const op = "repository.subscriptionview.Subscription"

	const query = `
		SELECT s.subscription_id, s.workspace_uuid, s.customer_id, s.plan, s.status, s.expires_at, s.updated_at
		FROM "workspace_subscription" s
		WHERE s.subscription_id = $1
	`

	var sub models.Subscription
	row := r.db.QueryRowxContext(ctx, query, subscriptionID)
	if err := row.StructScan(&sub); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internalErrors.ErrSubscriptionNotFound
		}
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: scan subscription: %w", op, err)
	}

	return &sub, nil
}

func (r *Repository) Insert(ctx context.Context, sub *models.Subscription) error {
	const op = "repository.subscriptionview.Insert"

	const query = `
		INSERT INTO "workspace_subscription" (subscription_id, workspace_uuid, customer_id, plan, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subscription_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		sub.SubscriptionID, sub.WorkspaceUUID, sub.CustomerID, sub.Plan, sub.Status, sub.ExpiresAt)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if inserted == 0 {
		return internalErrors.ErrSubscriptionExists
	}

	return nil
}

func (r *Repository) Update(ctx context.Context, sub *models.Subscription) error {
	const op = "repository.subscriptionview.Update"

	const query = `
		UPDATE "workspace_subscription"
		SET plan = $2, status = $3, expires_at = $4, updated_at = now()
		WHERE subscription_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, sub.SubscriptionID, sub.Plan, sub.Status, sub.ExpiresAt)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: update: %w", op, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if updated == 0 {
		return internalErrors.ErrSubscriptionNotFound
	}

	return nil
}
