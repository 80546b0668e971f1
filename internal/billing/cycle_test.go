package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdianp/subtrack/internal/domain"
	customError "github.com/ferdianp/subtrack/pkg/errors"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextBillingDate_Monthly(t *testing.T) {
	tests := []struct {
		name     string
		first    time.Time
		ref      time.Time
		expected time.Time
	}{
		{
			name:     "walks forward to next month",
			first:    date(2024, time.January, 15),
			ref:      date(2024, time.March, 10),
			expected: date(2024, time.March, 15),
		},
		{
			name:     "reference on a billing day returns that day",
			first:    date(2024, time.January, 15),
			ref:      date(2024, time.February, 15),
			expected: date(2024, time.February, 15),
		},
		{
			name:     "first billing date still in the future",
			first:    date(2024, time.May, 1),
			ref:      date(2024, time.March, 1),
			expected: date(2024, time.May, 1),
		},
		{
			// AddDate normalizes Jan 31 + 1 month into March instead of
			// clamping to Feb 29. This pins the chosen month-add rule.
			name:     "end-of-month anchor rolls over in short months",
			first:    date(2024, time.January, 31),
			ref:      date(2024, time.March, 1),
			expected: date(2024, time.March, 2),
		},
		{
			name:     "end-of-month anchor in non-leap year",
			first:    date(2023, time.January, 31),
			ref:      date(2023, time.March, 1),
			expected: date(2023, time.March, 3),
		},
		{
			name:     "ignores time of day on inputs",
			first:    time.Date(2024, time.January, 15, 23, 30, 0, 0, time.UTC),
			ref:      time.Date(2024, time.February, 15, 1, 0, 0, 0, time.UTC),
			expected: date(2024, time.February, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBillingDate(tt.first, domain.CycleMonthly, 0, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextBillingDate_FixedCycles(t *testing.T) {
	tests := []struct {
		name     string
		first    time.Time
		cycle    domain.BillingCycle
		custom   int
		ref      time.Time
		expected time.Time
	}{
		{
			name:     "quarterly mid-cycle",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleQuarterly,
			ref:      date(2024, time.January, 20),
			expected: date(2024, time.March, 31), // +90 days
		},
		{
			// Reference exactly on a cycle boundary yields the following
			// boundary; the fixed-day branch is strictly-after, unlike the
			// inclusive monthly branch.
			name:     "quarterly reference exactly on boundary",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleQuarterly,
			ref:      date(2024, time.March, 31),
			expected: date(2024, time.June, 29), // +180 days
		},
		{
			name:     "semi-annual",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleSemiAnnually,
			ref:      date(2024, time.February, 1),
			expected: date(2024, time.June, 29), // +180 days
		},
		{
			name:     "annual second cycle",
			first:    date(2023, time.January, 1),
			cycle:    domain.CycleAnnually,
			ref:      date(2024, time.February, 1),
			expected: date(2024, time.December, 31), // +730 days
		},
		{
			name:     "custom cycle from its first day",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleCustom,
			custom:   15,
			ref:      date(2024, time.January, 1),
			expected: date(2024, time.January, 16),
		},
		{
			// More than a full cycle before the schedule starts; the cycle
			// index is clamped so the result is the first billing date, not
			// a date before it.
			name:     "quarterly reference several cycles before first billing date",
			first:    date(2024, time.April, 10),
			cycle:    domain.CycleQuarterly,
			ref:      date(2023, time.January, 1),
			expected: date(2024, time.April, 10),
		},
		{
			name:     "annual reference a year before first billing date",
			first:    date(2024, time.April, 10),
			cycle:    domain.CycleAnnually,
			ref:      date(2023, time.January, 1),
			expected: date(2024, time.April, 10),
		},
		{
			name:     "custom cycle with future first billing date",
			first:    date(2024, time.May, 1),
			cycle:    domain.CycleCustom,
			custom:   90,
			ref:      date(2024, time.March, 1),
			expected: date(2024, time.May, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBillingDate(tt.first, tt.cycle, tt.custom, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextBillingDate_NeverBeforeFirstBillingDate(t *testing.T) {
	first := date(2024, time.April, 10)
	refs := []time.Time{
		date(2023, time.January, 1),
		date(2024, time.April, 9),
		date(2024, time.April, 10),
		date(2025, time.December, 31),
	}
	cycles := []domain.BillingCycle{
		domain.CycleMonthly,
		domain.CycleQuarterly,
		domain.CycleSemiAnnually,
		domain.CycleAnnually,
	}

	for _, cycle := range cycles {
		for _, ref := range refs {
			got, err := NextBillingDate(first, cycle, 0, ref)
			require.NoError(t, err)
			assert.False(t, got.Before(first), "cycle %s ref %s produced %s before first billing date", cycle, ref, got)

			// Deterministic under recomputation.
			again, err := NextBillingDate(first, cycle, 0, ref)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		}
	}
}

func TestNextBillingDate_InvalidCustomCycle(t *testing.T) {
	for _, days := range []int{0, -7} {
		_, err := NextBillingDate(date(2024, time.January, 1), domain.CycleCustom, days, date(2024, time.February, 1))
		assert.ErrorIs(t, err, customError.ErrInvalidCycleConfiguration)
	}
}

func TestDaysUntilRenewal(t *testing.T) {
	ref := date(2024, time.March, 1)

	assert.Equal(t, 9, DaysUntilRenewal(date(2024, time.March, 10), ref))
	assert.Equal(t, 0, DaysUntilRenewal(date(2024, time.March, 1), ref))
	assert.Equal(t, -5, DaysUntilRenewal(date(2024, time.February, 25), ref))
}

func TestIsReminderDue(t *testing.T) {
	ref := date(2024, time.March, 1)

	tests := []struct {
		name     string
		next     time.Time
		remind   int
		expected bool
	}{
		{"due today", date(2024, time.March, 1), 3, true},
		{"inside window", date(2024, time.March, 3), 3, true},
		{"on window edge", date(2024, time.March, 4), 3, true},
		{"outside window", date(2024, time.March, 5), 3, false},
		{"zero window only matches today", date(2024, time.March, 1), 0, true},
		{"zero window excludes tomorrow", date(2024, time.March, 2), 0, false},
		{"overdue never reminds", date(2024, time.February, 28), 3, false},
		{"overdue never reminds even with huge window", date(2024, time.February, 1), 365, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsReminderDue(tt.next, tt.remind, ref))
		})
	}
}

func TestElapsedOccurrences(t *testing.T) {
	tests := []struct {
		name     string
		first    time.Time
		cycle    domain.BillingCycle
		custom   int
		ref      time.Time
		expected int
	}{
		{
			name:     "first billing date in the future",
			first:    date(2024, time.June, 1),
			cycle:    domain.CycleMonthly,
			ref:      date(2024, time.March, 1),
			expected: 0,
		},
		{
			name:     "first day counts as one occurrence",
			first:    date(2024, time.March, 1),
			cycle:    domain.CycleMonthly,
			ref:      date(2024, time.March, 1),
			expected: 1,
		},
		{
			// Monthly uses the 30-day approximation, not calendar months.
			name:     "monthly approximated at 30 days",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleMonthly,
			ref:      date(2024, time.March, 1), // 60 days
			expected: 3,
		},
		{
			name:     "monthly just under the next 30-day mark",
			first:    date(2024, time.January, 31),
			cycle:    domain.CycleMonthly,
			ref:      date(2024, time.March, 30), // 59 days
			expected: 2,
		},
		{
			name:     "annual anniversary",
			first:    date(2023, time.January, 1),
			cycle:    domain.CycleAnnually,
			ref:      date(2024, time.January, 1), // 365 days
			expected: 2,
		},
		{
			name:     "custom weekly",
			first:    date(2024, time.January, 1),
			cycle:    domain.CycleCustom,
			custom:   7,
			ref:      date(2024, time.January, 21), // 20 days
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ElapsedOccurrences(tt.first, tt.cycle, tt.custom, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestElapsedOccurrences_InvalidCustomCycle(t *testing.T) {
	_, err := ElapsedOccurrences(date(2024, time.January, 1), domain.CycleCustom, 0, date(2024, time.March, 1))
	assert.ErrorIs(t, err, customError.ErrInvalidCycleConfiguration)
}
