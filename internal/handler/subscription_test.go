package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ferdianp/subtrack/internal/config"
	"github.com/ferdianp/subtrack/internal/domain"
	"github.com/ferdianp/subtrack/internal/service"
	"github.com/ferdianp/subtrack/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{StatsTTL: "5m"},
		Billing: config.BillingConfig{
			DefaultCurrency: "USD",
			TrendMonths:     12,
			UpcomingDays:    30,
			RateCNY:         "1",
			RateUSD:         "0.14",
			RateEUR:         "0.13",
			RateGBP:         "0.11",
		},
	}
}

func newTestHandler(repo *mocks.MockSubscriptionRepository) *SubscriptionHandler {
	cfg := testConfig()
	return NewSubscriptionHandler(
		service.NewSubscriptionService(repo, nil, cfg),
		service.NewReminderService(repo),
		cfg,
	)
}

func TestStats_RejectsUnknownCurrency(t *testing.T) {
	repo := &mocks.MockSubscriptionRepository{}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/stats?currency=JPY", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestStats_AcceptsKnownCurrencyCaseInsensitive(t *testing.T) {
	repo := &mocks.MockSubscriptionRepository{}
	h := newTestHandler(repo)
	repo.On("List", mock.Anything).Return([]*domain.Subscription{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/stats?currency=eur", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currency":"EUR"`)
}

func TestStats_DefaultsToConfiguredCurrency(t *testing.T) {
	repo := &mocks.MockSubscriptionRepository{}
	h := newTestHandler(repo)
	repo.On("List", mock.Anything).Return([]*domain.Subscription{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currency":"USD"`)
}

func TestTrends_RejectsUnknownCurrency(t *testing.T) {
	repo := &mocks.MockSubscriptionRepository{}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/trends?currency=AUD", nil)
	rec := httptest.NewRecorder()
	h.Trends(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List", mock.Anything)
}
