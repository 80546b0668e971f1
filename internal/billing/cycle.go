// Package billing holds the pure computation core of the service: billing
// cycle date arithmetic, currency normalization and spend aggregation.
//
// Every function takes an explicit reference date and operates only on its
// inputs plus an immutable rate table, so all of it is deterministic and safe
// for unrestricted concurrent use.
package billing

import (
	"time"

	"github.com/ferdianp/subtrack/internal/domain"
	customError "github.com/ferdianp/subtrack/pkg/errors"
)

// Fixed day counts used by the non-monthly cycle branches and by occurrence
// counting.
const (
	daysMonthly      = 30
	daysQuarterly    = 90
	daysSemiAnnually = 180
	daysAnnually     = 365
)

// DateOnly strips the time-of-day portion, anchoring the date in UTC. All
// schedule arithmetic works on day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference b - a.
func daysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// floorDiv divides rounding toward negative infinity. Go's integer division
// truncates toward zero, which gives the wrong cycle index when the first
// billing date is still in the future.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// fixedCycleDays returns the day count for a non-monthly cycle. A custom
// cycle without a positive day count is a configuration error.
func fixedCycleDays(cycle domain.BillingCycle, customCycleDays int) (int, error) {
	switch cycle {
	case domain.CycleQuarterly:
		return daysQuarterly, nil
	case domain.CycleSemiAnnually:
		return daysSemiAnnually, nil
	case domain.CycleAnnually:
		return daysAnnually, nil
	case domain.CycleCustom:
		if customCycleDays <= 0 {
			return 0, customError.WrapInvalidCycleConfiguration(customCycleDays)
		}
		return customCycleDays, nil
	default:
		return daysMonthly, nil
	}
}

// NextBillingDate returns the next billing date on the schedule anchored at
// firstBillingDate, relative to referenceDate.
//
// The monthly branch walks calendar months via time.AddDate and returns the
// first on-schedule date on or after the reference date; AddDate normalizes
// overflow, so billing anchored on Jan 31 lands on Mar 2/3 rather than
// clamping to month end. The other cycles use fixed day counts (90/180/365/
// custom) and return the first boundary strictly after the most recently
// completed cycle, so a reference date sitting exactly on a boundary yields
// the following one. The two branches intentionally diverge at the boundary;
// the tests pin both behaviors.
//
// The result is always on or after firstBillingDate.
func NextBillingDate(firstBillingDate time.Time, cycle domain.BillingCycle, customCycleDays int, referenceDate time.Time) (time.Time, error) {
	first := DateOnly(firstBillingDate)
	ref := DateOnly(referenceDate)

	if cycle == domain.CycleMonthly {
		next := first
		for k := 1; next.Before(ref); k++ {
			next = first.AddDate(0, k, 0)
		}
		return next, nil
	}

	days, err := fixedCycleDays(cycle, customCycleDays)
	if err != nil {
		return time.Time{}, err
	}

	// A reference date more than one full cycle before the first billing date
	// would index before the schedule start; clamp so the result never
	// precedes firstBillingDate.
	cyclesPassed := floorDiv(daysBetween(first, ref), days)
	if cyclesPassed < -1 {
		cyclesPassed = -1
	}
	return first.AddDate(0, 0, (cyclesPassed+1)*days), nil
}

// DaysUntilRenewal returns the signed whole-day difference between the next
// billing date and the reference date. Negative means overdue.
func DaysUntilRenewal(nextBillingDate, referenceDate time.Time) int {
	return daysBetween(referenceDate, nextBillingDate)
}

// IsReminderDue reports whether the renewal falls inside the reminder
// window: zero to remindDaysBefore days away. Overdue renewals are never
// flagged, so a missed renewal does not keep firing reminders.
func IsReminderDue(nextBillingDate time.Time, remindDaysBefore int, referenceDate time.Time) bool {
	days := DaysUntilRenewal(nextBillingDate, referenceDate)
	return days >= 0 && days <= remindDaysBefore
}

// ElapsedOccurrences counts the billing events that happened on or before
// the reference date, the first occurrence counting as one. Returns zero when
// the first billing date is still in the future.
//
// Every cycle kind, including monthly, is approximated with a fixed day
// count (30/90/180/365/custom), so historical totals for monthly
// subscriptions drift slightly across months of different lengths.
func ElapsedOccurrences(firstBillingDate time.Time, cycle domain.BillingCycle, customCycleDays int, referenceDate time.Time) (int, error) {
	days := daysMonthly
	if cycle != domain.CycleMonthly {
		var err error
		days, err = fixedCycleDays(cycle, customCycleDays)
		if err != nil {
			return 0, err
		}
	}

	since := daysBetween(firstBillingDate, referenceDate)
	if since < 0 {
		return 0, nil
	}
	return since/days + 1, nil
}
