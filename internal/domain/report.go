package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsReport is the aggregate spend report for a set of subscriptions,
// normalized into a single target currency. Monetary fields are rounded to
// two decimal places; accumulation happens at full precision.
type StatsReport struct {
	TotalMonthly         decimal.Decimal              `json:"total_monthly"`
	TotalYearly          decimal.Decimal              `json:"total_yearly"`
	TotalHistorical      decimal.Decimal              `json:"total_historical"`
	ActiveCount          int                          `json:"active_count"`
	CancelledCount       int                          `json:"cancelled_count"`
	ByCategory           map[Category]decimal.Decimal `json:"by_category"`
	HistoricalByCategory map[Category]decimal.Decimal `json:"historical_by_category"`
	Currency             Currency                     `json:"currency"`
}

// TrendPoint is one month bucket of the trailing spend trend.
type TrendPoint struct {
	MonthKey         string          `json:"month"`
	Label            string          `json:"label"`
	Total            decimal.Decimal `json:"total"`
	NewSubscriptions int             `json:"new_subscriptions"`
}

// TrendSeries is an ordered list of month buckets, oldest first, ending at
// the reference date's month.
type TrendSeries struct {
	Currency Currency     `json:"currency"`
	Months   []TrendPoint `json:"months"`
}

// UpcomingRenewal decorates a subscription with renewal countdown fields.
type UpcomingRenewal struct {
	Subscription
	DaysUntilRenewal int  `json:"days_until_renewal"`
	ReminderDue      bool `json:"reminder_due"`
}

// ForecastRenewal is a single renewal expected next month, with the amount
// converted into the forecast's currency.
type ForecastRenewal struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        Currency        `json:"currency"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	NextBillingDate time.Time       `json:"next_billing_date"`
	Category        Category        `json:"category,omitempty"`
}

// NextMonthForecast summarizes the renewals falling in the calendar month
// after the reference date.
type NextMonthForecast struct {
	Month             string            `json:"month"`
	Label             string            `json:"label"`
	Currency          Currency          `json:"currency"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	SubscriptionCount int               `json:"subscription_count"`
	Renewals          []ForecastRenewal `json:"subscriptions"`
}

// ReminderDigest groups reminder-due subscriptions by urgency.
type ReminderDigest struct {
	Urgent   []UpcomingRenewal `json:"urgent"`   // due within 3 days
	Soon     []UpcomingRenewal `json:"soon"`     // due within 4-7 days
	Upcoming []UpcomingRenewal `json:"upcoming"` // due later than 7 days
}

// Total returns the number of reminders across all urgency groups.
func (d *ReminderDigest) Total() int {
	return len(d.Urgent) + len(d.Soon) + len(d.Upcoming)
}
