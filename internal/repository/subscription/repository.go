package subscription

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

type outboxRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, evt models.Event) error
}

// Repository is the billing service's subscription store. Every write also
// records the matching outbox event so the workspace service converges.
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

func (r *Repository) Create(ctx context.Context, sub *models.Subscription) (err error) {
	const op = "repository.subscription.Create"

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

	const query = `
		INSERT INTO "subscription" (subscription_id, workspace_uuid, customer_id, plan, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subscription_id) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, query,
		sub.SubscriptionID, sub.WorkspaceUUID, sub.CustomerID, sub.Plan, sub.Status, sub.ExpiresAt)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: insert subscription: %w", op, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if inserted == 0 {
		return internalErrors.ErrSubscriptionExists
	}

	evt := models.SubscriptionCreatedEvent{
		SubscriptionID: sub.SubscriptionID,
		WorkspaceUUID:  sub.WorkspaceUUID,
		Plan:           sub.Plan,
		Status:         sub.Status,
		ExpiresAt:      unixPtr(sub),
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	return tx.Commit()
}

func (r *Repository) Update(ctx context.Context, sub *models.Subscription) (err error) {
	const op = "repository.subscription.Update"

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

	const query = `
		UPDATE "subscription"
		SET plan = $2, status = $3, expires_at = $4, updated_at = now()
		WHERE subscription_id = $1
	`

	res, err := tx.ExecContext(ctx, query, sub.SubscriptionID, sub.Plan, sub.Status, sub.ExpiresAt)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: update subscription: %w", op, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if updated == 0 {
		return internalErrors.ErrSubscriptionNotFound
	}

	evt := models.SubscriptionUpdatedEvent{
		SubscriptionID: sub.SubscriptionID,
		WorkspaceUUID:  sub.WorkspaceUUID,
		Plan:           sub.Plan,
		Status:         sub.Status,
		ExpiresAt:      unixPtr(sub),
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	return tx.Commit()
}

// Delete marks the subscription canceled and records the deletion event.
// The row itself stays for audit.
func (r *Repository) Delete(ctx context.Context, sub *models.Subscription) (err error) {
	const op = "repository.subscription.Delete"

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

	const query = `
		UPDATE "subscription"
		SET status = $2, updated_at = now()
		WHERE subscription_id = $1
	`

	res, err := tx.ExecContext(ctx, query, sub.SubscriptionID, models.SubscriptionCanceled)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: cancel subscription: %w", op, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if updated == 0 {
		return internalErrors.ErrSubscriptionNotFound
	}

	evt := models.SubscriptionDeletedEvent{
		SubscriptionID: sub.SubscriptionID,
		WorkspaceUUID:  sub.WorkspaceUUID,
	}

	if err = r.outbox.Insert(ctx, tx, evt); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: outbox insert: %w", op, err)
	}

	return tx.Commit()
}

func (r *Repository) Subscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	const op = "repository.subscription.Subscription"

	const query = `
		SELECT s.subscription_id, s.workspace_uuid, s.customer_id, s.plan, s.status, s.expires_at, s.updated_at
		FROM "subscription" s
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

func unixPtr(sub *models.Subscription) *int64 {
	if sub.ExpiresAt == nil {
		return nil
	}
	unix := sub.ExpiresAt.Unix()
	return &unix
}
