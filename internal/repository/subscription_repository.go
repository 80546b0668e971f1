package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ferdianp/subtrack/internal/domain"
	customError "github.com/ferdianp/subtrack/pkg/errors"
)

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, name, amount, currency, billing_cycle, custom_cycle_days,
			first_billing_date, next_billing_date, remind_days_before, is_active, category,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.Name,
		sub.Amount,
		sub.Currency,
		sub.BillingCycle,
		sub.CustomCycleDays,
		sub.FirstBillingDate,
		sub.NextBillingDate,
		sub.RemindDaysBefore,
		sub.IsActive,
		sub.Category,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	return err
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, name, amount, currency, billing_cycle, custom_cycle_days,
			first_billing_date, next_billing_date, remind_days_before, is_active, category,
			created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	var sub domain.Subscription
	err := r.db.GetContext(ctx, &sub, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSubscriptionNotFound(id.String())
		}
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context) ([]*domain.Subscription, error) {
	query := `
		SELECT id, name, amount, currency, billing_cycle, custom_cycle_days,
			first_billing_date, next_billing_date, remind_days_before, is_active, category,
			created_at, updated_at
		FROM subscriptions
		ORDER BY next_billing_date, name
	`

	subs := make([]*domain.Subscription, 0)
	err := r.db.SelectContext(ctx, &subs, query)
	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*domain.Subscription, error) {
	query := `
		SELECT id, name, amount, currency, billing_cycle, custom_cycle_days,
			first_billing_date, next_billing_date, remind_days_before, is_active, category,
			created_at, updated_at
		FROM subscriptions
		WHERE is_active = TRUE
		ORDER BY next_billing_date, name
	`

	subs := make([]*domain.Subscription, 0)
	err := r.db.SelectContext(ctx, &subs, query)
	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $2, amount = $3, currency = $4, billing_cycle = $5, custom_cycle_days = $6,
			first_billing_date = $7, next_billing_date = $8, remind_days_before = $9,
			is_active = $10, category = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.Name,
		sub.Amount,
		sub.Currency,
		sub.BillingCycle,
		sub.CustomCycleDays,
		sub.FirstBillingDate,
		sub.NextBillingDate,
		sub.RemindDaysBefore,
		sub.IsActive,
		sub.Category,
		sub.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapSubscriptionNotFound(sub.ID.String())
	}

	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapSubscriptionNotFound(id.String())
	}

	return nil
}

func (r *subscriptionRepository) UpdateNextBillingDates(ctx context.Context, dates map[uuid.UUID]time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	query := `
		UPDATE subscriptions
		SET next_billing_date = $2, updated_at = $3
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for id, next := range dates {
		if _, err = tx.ExecContext(ctx, query, id, next, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}
