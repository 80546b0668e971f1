package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ferdianp/subtrack/internal/domain"
)

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// Create creates a new subscription
	Create(ctx context.Context, sub *domain.Subscription) error

	// GetByID retrieves a subscription by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)

	// List retrieves all subscriptions
	List(ctx context.Context) ([]*domain.Subscription, error)

	// ListActive retrieves all active subscriptions
	ListActive(ctx context.Context) ([]*domain.Subscription, error)

	// Update updates a subscription
	Update(ctx context.Context, sub *domain.Subscription) error

	// Delete removes a subscription
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateNextBillingDates writes recomputed next billing dates in one
	// transaction; used by the lazy refresh and the scheduler
	UpdateNextBillingDates(ctx context.Context, dates map[uuid.UUID]time.Time) error
}
