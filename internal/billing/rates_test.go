package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ferdianp/subtrack/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}

func TestConvert_SameCurrencyIsExact(t *testing.T) {
	rates := DefaultRates()

	for _, c := range domain.Currencies() {
		amount := dec("9.99")
		assertDecimalEqual(t, amount, rates.Convert(amount, c, c))
	}
}

func TestConvert_ThroughBaseCurrency(t *testing.T) {
	rates := DefaultRates()

	// 14 USD = 100 CNY = 13 EUR with the default table.
	assertDecimalEqual(t, dec("100"), rates.Convert(dec("14"), domain.CurrencyUSD, domain.CurrencyCNY))
	assertDecimalEqual(t, dec("13"), rates.Convert(dec("14"), domain.CurrencyUSD, domain.CurrencyEUR))
	assertDecimalEqual(t, dec("14"), rates.Convert(dec("100"), domain.CurrencyCNY, domain.CurrencyUSD))
}

func TestConvert_RoundTrip(t *testing.T) {
	rates := DefaultRates()
	tolerance := dec("0.00000001")

	for _, from := range domain.Currencies() {
		for _, to := range domain.Currencies() {
			amount := dec("123.45")
			back := rates.Convert(rates.Convert(amount, from, to), to, from)
			diff := back.Sub(amount).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"%s -> %s -> %s drifted by %s", from, to, from, diff)
		}
	}
}

func TestConvert_UnknownCurrencyPassesThroughAtRateOne(t *testing.T) {
	rates := DefaultRates()

	// JPY is not in the table: both legs use rate 1 against the base.
	assertDecimalEqual(t, dec("100"), rates.Convert(dec("100"), domain.Currency("JPY"), domain.CurrencyCNY))
	assertDecimalEqual(t, dec("14"), rates.Convert(dec("100"), domain.Currency("JPY"), domain.CurrencyUSD))
}

func TestMonthlyCost(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency domain.Currency
		cycle    domain.BillingCycle
		custom   int
		target   domain.Currency
		expected decimal.Decimal
	}{
		{
			name:     "monthly passes through",
			amount:   dec("9.99"),
			currency: domain.CurrencyUSD,
			cycle:    domain.CycleMonthly,
			target:   domain.CurrencyUSD,
			expected: dec("9.99"),
		},
		{
			name:     "annual divides by twelve at full precision",
			amount:   dec("99.99"),
			currency: domain.CurrencyUSD,
			cycle:    domain.CycleAnnually,
			target:   domain.CurrencyUSD,
			expected: dec("8.3325"),
		},
		{
			name:     "quarterly divides by three",
			amount:   dec("30"),
			currency: domain.CurrencyEUR,
			cycle:    domain.CycleQuarterly,
			target:   domain.CurrencyEUR,
			expected: dec("10"),
		},
		{
			name:     "semi-annual divides by six",
			amount:   dec("60"),
			currency: domain.CurrencyGBP,
			cycle:    domain.CycleSemiAnnually,
			target:   domain.CurrencyGBP,
			expected: dec("10"),
		},
		{
			name:     "custom prorates by day times thirty",
			amount:   dec("15"),
			currency: domain.CurrencyUSD,
			cycle:    domain.CycleCustom,
			custom:   15,
			target:   domain.CurrencyUSD,
			expected: dec("30"),
		},
		{
			name:     "custom without day count falls back to monthly",
			amount:   dec("15"),
			currency: domain.CurrencyUSD,
			cycle:    domain.CycleCustom,
			custom:   0,
			target:   domain.CurrencyUSD,
			expected: dec("15"),
		},
		{
			name:     "unknown cycle treated as monthly",
			amount:   dec("7.50"),
			currency: domain.CurrencyUSD,
			cycle:    domain.BillingCycle("weekly"),
			target:   domain.CurrencyUSD,
			expected: dec("7.50"),
		},
		{
			name:     "converts before normalizing",
			amount:   dec("168"), // 168 USD = 1200 CNY, /12 = 100 CNY monthly
			currency: domain.CurrencyUSD,
			cycle:    domain.CycleAnnually,
			target:   domain.CurrencyCNY,
			expected: dec("100"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.MonthlyCost(tt.amount, tt.currency, tt.cycle, tt.custom, tt.target)
			assertDecimalEqual(t, tt.expected, got)
		})
	}
}

func TestMonthlyCost_RoundsToTwoDecimalsAtBoundary(t *testing.T) {
	rates := DefaultRates()

	monthly := rates.MonthlyCost(dec("99.99"), domain.CurrencyUSD, domain.CycleAnnually, 0, domain.CurrencyUSD)
	assertDecimalEqual(t, dec("8.33"), monthly.Round(2))
}

func TestMonthlyCost_ScalesLinearly(t *testing.T) {
	rates := DefaultRates()

	// Exact when the division is exact.
	single := rates.MonthlyCost(dec("6"), domain.CurrencyUSD, domain.CycleAnnually, 0, domain.CurrencyUSD)
	double := rates.MonthlyCost(dec("12"), domain.CurrencyUSD, domain.CycleAnnually, 0, domain.CurrencyUSD)
	assertDecimalEqual(t, single.Mul(decimal.NewFromInt(2)), double)

	// Within division precision otherwise.
	tolerance := dec("0.0000000001")
	single = rates.MonthlyCost(dec("10"), domain.CurrencyUSD, domain.CycleQuarterly, 0, domain.CurrencyUSD)
	double = rates.MonthlyCost(dec("20"), domain.CurrencyUSD, domain.CycleQuarterly, 0, domain.CurrencyUSD)
	diff := double.Sub(single.Mul(decimal.NewFromInt(2))).Abs()
	assert.True(t, diff.LessThanOrEqual(tolerance), "linearity drifted by %s", diff)
}

func TestYearlyCost_IsTwelveTimesMonthly(t *testing.T) {
	rates := DefaultRates()

	cycles := []domain.BillingCycle{
		domain.CycleMonthly,
		domain.CycleQuarterly,
		domain.CycleSemiAnnually,
		domain.CycleAnnually,
	}

	for _, cycle := range cycles {
		monthly := rates.MonthlyCost(dec("47.11"), domain.CurrencyEUR, cycle, 0, domain.CurrencyUSD)
		yearly := rates.YearlyCost(dec("47.11"), domain.CurrencyEUR, cycle, 0, domain.CurrencyUSD)
		assertDecimalEqual(t, monthly.Mul(decimal.NewFromInt(12)), yearly)
	}
}
