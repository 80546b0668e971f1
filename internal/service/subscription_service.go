package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ferdianp/subtrack/internal/billing"
	"github.com/ferdianp/subtrack/internal/config"
	"github.com/ferdianp/subtrack/internal/domain"
	"github.com/ferdianp/subtrack/internal/repository"
	customError "github.com/ferdianp/subtrack/pkg/errors"
)

// SubscriptionService orchestrates subscription CRUD and reporting. All
// schedule dates come from the billing package; the stored next_billing_date
// is a cache that this service keeps in step with "today".
type SubscriptionService struct {
	repo  repository.SubscriptionRepository
	redis *redis.Client
	rates billing.RateTable
	cfg   *config.Config

	// now is the reference clock, swappable in tests. Each request reads it
	// once so every computation within the request agrees on "today".
	now func() time.Time
}

func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		redis: redisClient,
		rates: cfg.RateTable(),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Create validates and stores a new subscription with its computed next
// billing date.
func (s *SubscriptionService) Create(ctx context.Context, req *domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(req.Amount.String())
	}

	now := s.now()
	next, err := billing.NextBillingDate(req.FirstBillingDate, req.BillingCycle, req.CustomCycleDays, now)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:               uuid.New(),
		Name:             req.Name,
		Amount:           req.Amount,
		Currency:         req.Currency,
		BillingCycle:     req.BillingCycle,
		CustomCycleDays:  req.CustomCycleDays,
		FirstBillingDate: billing.DateOnly(req.FirstBillingDate),
		NextBillingDate:  next,
		RemindDaysBefore: req.RemindDaysBefore,
		IsActive:         true,
		Category:         req.Category,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateStatsCache(ctx)
	return sub, nil
}

// GetByID returns one subscription, refreshing its cached next billing date
// if today has moved past it.
func (s *SubscriptionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.refreshNextBillingDates(ctx, []*domain.Subscription{sub}); err != nil {
		return nil, err
	}
	return sub, nil
}

// List returns all subscriptions with up-to-date next billing dates.
func (s *SubscriptionService) List(ctx context.Context) ([]*domain.Subscription, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.refreshNextBillingDates(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Update replaces a subscription's fields and recomputes its schedule.
func (s *SubscriptionService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(req.Amount.String())
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, err := billing.NextBillingDate(req.FirstBillingDate, req.BillingCycle, req.CustomCycleDays, now)
	if err != nil {
		return nil, err
	}

	sub.Name = req.Name
	sub.Amount = req.Amount
	sub.Currency = req.Currency
	sub.BillingCycle = req.BillingCycle
	sub.CustomCycleDays = req.CustomCycleDays
	sub.FirstBillingDate = billing.DateOnly(req.FirstBillingDate)
	sub.NextBillingDate = next
	sub.RemindDaysBefore = req.RemindDaysBefore
	sub.IsActive = req.IsActive
	sub.Category = req.Category
	sub.UpdatedAt = now

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.invalidateStatsCache(ctx)
	return sub, nil
}

// Delete removes a subscription.
func (s *SubscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateStatsCache(ctx)
	return nil
}

// Stats returns the aggregate spend report in the target currency, cached
// in Redis until the next subscription write.
func (s *SubscriptionService) Stats(ctx context.Context, target domain.Currency) (*domain.StatsReport, error) {
	if cached := s.cachedStats(ctx, target); cached != nil {
		return cached, nil
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	report, err := billing.ComputeStats(subs, s.rates, target, s.now())
	if err != nil {
		return nil, err
	}

	s.cacheStats(ctx, target, report)
	return report, nil
}

// Trends returns the trailing month-by-month spend series. A non-positive
// monthCount falls back to the configured default.
func (s *SubscriptionService) Trends(ctx context.Context, target domain.Currency, monthCount int) (*domain.TrendSeries, error) {
	if monthCount <= 0 {
		monthCount = s.cfg.Billing.TrendMonths
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return billing.ComputeTrend(subs, s.rates, target, s.now(), monthCount), nil
}

// Upcoming returns active subscriptions renewing within the window.
func (s *SubscriptionService) Upcoming(ctx context.Context, withinDays int) ([]domain.UpcomingRenewal, error) {
	if withinDays < 0 {
		withinDays = s.cfg.Billing.UpcomingDays
	}

	subs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return billing.ComputeUpcoming(subs, withinDays, s.now())
}

// NextMonthForecast summarizes next month's expected renewals.
func (s *SubscriptionService) NextMonthForecast(ctx context.Context, target domain.Currency) (*domain.NextMonthForecast, error) {
	subs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return billing.ComputeNextMonthForecast(subs, s.rates, target, s.now())
}

// RefreshAllNextBillingDates recomputes and persists the cached next billing
// date of every stored subscription. The scheduler runs this daily.
func (s *SubscriptionService) RefreshAllNextBillingDates(ctx context.Context) (int, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	stale, err := s.staleNextBillingDates(subs)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := s.repo.UpdateNextBillingDates(ctx, stale); err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return len(stale), nil
}

// refreshNextBillingDates recomputes stale dates in the given rows and
// persists them. The in-memory rows are corrected even if the persist fails;
// the write is a cache update, not the source of truth.
func (s *SubscriptionService) refreshNextBillingDates(ctx context.Context, subs []*domain.Subscription) error {
	stale, err := s.staleNextBillingDates(subs)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	for _, sub := range subs {
		if next, ok := stale[sub.ID]; ok {
			sub.NextBillingDate = next
		}
	}

	if err := s.repo.UpdateNextBillingDates(ctx, stale); err != nil {
		log.Printf("Failed to persist refreshed billing dates: %v", err)
	}
	return nil
}

func (s *SubscriptionService) staleNextBillingDates(subs []*domain.Subscription) (map[uuid.UUID]time.Time, error) {
	now := s.now()
	stale := make(map[uuid.UUID]time.Time)

	for _, sub := range subs {
		next, err := billing.NextBillingDate(sub.FirstBillingDate, sub.BillingCycle, sub.CustomCycleDays, now)
		if err != nil {
			return nil, err
		}
		if !next.Equal(billing.DateOnly(sub.NextBillingDate)) {
			stale[sub.ID] = next
		}
	}

	return stale, nil
}

func statsCacheKey(target domain.Currency) string {
	return fmt.Sprintf("stats:%s", target)
}

func (s *SubscriptionService) cachedStats(ctx context.Context, target domain.Currency) *domain.StatsReport {
	if s.redis == nil {
		return nil
	}

	payload, err := s.redis.Get(ctx, statsCacheKey(target)).Bytes()
	if err != nil {
		return nil
	}

	var report domain.StatsReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil
	}
	return &report
}

func (s *SubscriptionService) cacheStats(ctx context.Context, target domain.Currency, report *domain.StatsReport) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, statsCacheKey(target), payload, s.cfg.GetStatsTTL()).Err(); err != nil {
		log.Printf("Failed to cache stats report: %v", err)
	}
}

func (s *SubscriptionService) invalidateStatsCache(ctx context.Context) {
	if s.redis == nil {
		return
	}

	keys := make([]string, 0, len(domain.Currencies()))
	for _, c := range domain.Currencies() {
		keys = append(keys, statsCacheKey(c))
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate stats cache: %v", err)
	}
}
