package service

import (
	"context"
	"time"

	"github.com/ferdianp/subtrack/internal/billing"
	"github.com/ferdianp/subtrack/internal/domain"
	"github.com/ferdianp/subtrack/internal/repository"
	customError "github.com/ferdianp/subtrack/pkg/errors"
)

// ReminderService computes which renewals are inside their reminder window.
// Delivery (email, chat webhooks) is up to whatever consumes the digest.
type ReminderService struct {
	repo repository.SubscriptionRepository
	now  func() time.Time
}

func NewReminderService(repo repository.SubscriptionRepository) *ReminderService {
	return &ReminderService{
		repo: repo,
		now:  time.Now,
	}
}

// CheckReminders scans active subscriptions and groups the reminder-due ones
// by urgency.
func (s *ReminderService) CheckReminders(ctx context.Context) (*domain.ReminderDigest, error) {
	subs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return billing.ComputeReminderDigest(subs, s.now())
}
