package billing

import (
	"github.com/shopspring/decimal"

	"github.com/ferdianp/subtrack/internal/domain"
)

// RateTable maps currency codes to their rate relative to the base currency
// (CNY in the shipped defaults). It is built once at startup from
// configuration and never mutated, so concurrent reads need no coordination.
//
// A currency missing from the table converts at rate 1. That is a deliberate
// lenient fallback: aggregate reports keep working when an unknown code
// slips in, instead of rejecting the whole computation.
type RateTable map[domain.Currency]decimal.Decimal

// DefaultRates returns the built-in CNY-relative table used when no rates
// are configured.
func DefaultRates() RateTable {
	return RateTable{
		domain.CurrencyCNY: decimal.NewFromInt(1),
		domain.CurrencyUSD: decimal.RequireFromString("0.14"),
		domain.CurrencyEUR: decimal.RequireFromString("0.13"),
		domain.CurrencyGBP: decimal.RequireFromString("0.11"),
	}
}

func (t RateTable) rate(c domain.Currency) decimal.Decimal {
	if r, ok := t[c]; ok && r.IsPositive() {
		return r
	}
	return decimal.NewFromInt(1)
}

// Convert converts amount from one currency to another through the base
// currency. Same-currency conversion returns the amount unchanged, exactly.
func (t RateTable) Convert(amount decimal.Decimal, from, to domain.Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Div(t.rate(from)).Mul(t.rate(to))
}

// MonthlyCost normalizes a per-cycle amount into a monthly cost in the
// target currency. Custom cycles prorate by day (amount/days x 30); an
// unknown cycle is treated as monthly, matching the rate-1 leniency of
// Convert. Callers round at the output boundary, not here.
func (t RateTable) MonthlyCost(amount decimal.Decimal, currency domain.Currency, cycle domain.BillingCycle, customCycleDays int, target domain.Currency) decimal.Decimal {
	converted := t.Convert(amount, currency, target)

	switch cycle {
	case domain.CycleQuarterly:
		return converted.Div(decimal.NewFromInt(3))
	case domain.CycleSemiAnnually:
		return converted.Div(decimal.NewFromInt(6))
	case domain.CycleAnnually:
		return converted.Div(decimal.NewFromInt(12))
	case domain.CycleCustom:
		if customCycleDays > 0 {
			return converted.Div(decimal.NewFromInt(int64(customCycleDays))).Mul(decimal.NewFromInt(daysMonthly))
		}
		return converted
	default:
		return converted
	}
}

// YearlyCost is twelve monthly costs; it has no independent computation.
func (t RateTable) YearlyCost(amount decimal.Decimal, currency domain.Currency, cycle domain.BillingCycle, customCycleDays int, target domain.Currency) decimal.Decimal {
	return t.MonthlyCost(amount, currency, cycle, customCycleDays, target).Mul(decimal.NewFromInt(12))
}
