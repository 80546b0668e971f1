package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 style currency code from the supported set.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists every supported currency code.
func Currencies() []Currency {
	return []Currency{CurrencyCNY, CurrencyUSD, CurrencyEUR, CurrencyGBP}
}

// BillingCycle is the recurrence pattern of a subscription charge.
type BillingCycle string

const (
	CycleMonthly      BillingCycle = "monthly"
	CycleQuarterly    BillingCycle = "quarterly"
	CycleSemiAnnually BillingCycle = "semi-annually"
	CycleAnnually     BillingCycle = "annually"
	CycleCustom       BillingCycle = "custom"
)

// Category groups subscriptions for reporting. It carries no behavior.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryMusic         Category = "music"
	CategoryProductivity  Category = "productivity"
	CategoryCloud         Category = "cloud"
	CategoryOther         Category = "other"
)

// Subscription is a recurring charge tracked by the service.
//
// NextBillingDate is derived from FirstBillingDate and the cycle; the billing
// package is the single authority for producing it. It is cached in storage
// and refreshed whenever the schedule fields change or "today" moves past it.
type Subscription struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Currency         Currency        `json:"currency" db:"currency"`
	BillingCycle     BillingCycle    `json:"billing_cycle" db:"billing_cycle"`
	CustomCycleDays  int             `json:"custom_cycle_days,omitempty" db:"custom_cycle_days"`
	FirstBillingDate time.Time       `json:"first_billing_date" db:"first_billing_date"`
	NextBillingDate  time.Time       `json:"next_billing_date" db:"next_billing_date"`
	RemindDaysBefore int             `json:"remind_days_before" db:"remind_days_before"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	Category         Category        `json:"category,omitempty" db:"category"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateSubscriptionRequest struct {
	Name             string          `json:"name" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	Currency         Currency        `json:"currency" validate:"required,oneof=CNY USD EUR GBP"`
	BillingCycle     BillingCycle    `json:"billing_cycle" validate:"required,oneof=monthly quarterly semi-annually annually custom"`
	CustomCycleDays  int             `json:"custom_cycle_days" validate:"omitempty,gt=0"`
	FirstBillingDate time.Time       `json:"first_billing_date" validate:"required"`
	RemindDaysBefore int             `json:"remind_days_before" validate:"gte=0"`
	Category         Category        `json:"category" validate:"omitempty,oneof=entertainment music productivity cloud other"`
}

type UpdateSubscriptionRequest struct {
	Name             string          `json:"name" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	Currency         Currency        `json:"currency" validate:"required,oneof=CNY USD EUR GBP"`
	BillingCycle     BillingCycle    `json:"billing_cycle" validate:"required,oneof=monthly quarterly semi-annually annually custom"`
	CustomCycleDays  int             `json:"custom_cycle_days" validate:"omitempty,gt=0"`
	FirstBillingDate time.Time       `json:"first_billing_date" validate:"required"`
	RemindDaysBefore int             `json:"remind_days_before" validate:"gte=0"`
	IsActive         bool            `json:"is_active"`
	Category         Category        `json:"category" validate:"omitempty,oneof=entertainment music productivity cloud other"`
}
