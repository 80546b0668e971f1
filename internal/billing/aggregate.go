package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ferdianp/subtrack/internal/domain"
)

const trendMonthKeyFormat = "2006-01"

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ComputeStats aggregates a set of subscriptions into a single report in the
// target currency.
//
// Active subscriptions contribute their monthly cost to the totals and to
// their category's bucket; cancelled ones only bump the cancelled count.
// Historical spend counts every subscription regardless of active state,
// since cancelled subscriptions were still paid for while they ran. Totals
// accumulate at full precision and are rounded once at the end.
func ComputeStats(subscriptions []*domain.Subscription, rates RateTable, target domain.Currency, referenceDate time.Time) (*domain.StatsReport, error) {
	report := &domain.StatsReport{
		ByCategory:           make(map[domain.Category]decimal.Decimal),
		HistoricalByCategory: make(map[domain.Category]decimal.Decimal),
		Currency:             target,
	}

	var totalMonthly, totalHistorical decimal.Decimal

	for _, sub := range subscriptions {
		if sub.IsActive {
			report.ActiveCount++

			monthly := rates.MonthlyCost(sub.Amount, sub.Currency, sub.BillingCycle, sub.CustomCycleDays, target)
			totalMonthly = totalMonthly.Add(monthly)
			if sub.Category != "" {
				report.ByCategory[sub.Category] = report.ByCategory[sub.Category].Add(monthly)
			}
		} else {
			report.CancelledCount++
		}

		occurrences, err := ElapsedOccurrences(sub.FirstBillingDate, sub.BillingCycle, sub.CustomCycleDays, referenceDate)
		if err != nil {
			return nil, err
		}
		if occurrences == 0 {
			continue
		}

		spent := rates.Convert(sub.Amount, sub.Currency, target).Mul(decimal.NewFromInt(int64(occurrences)))
		totalHistorical = totalHistorical.Add(spent)
		if sub.Category != "" {
			report.HistoricalByCategory[sub.Category] = report.HistoricalByCategory[sub.Category].Add(spent)
		}
	}

	report.TotalMonthly = totalMonthly.Round(2)
	report.TotalYearly = totalMonthly.Mul(decimal.NewFromInt(12)).Round(2)
	report.TotalHistorical = totalHistorical.Round(2)
	for cat, v := range report.ByCategory {
		report.ByCategory[cat] = v.Round(2)
	}
	for cat, v := range report.HistoricalByCategory {
		report.HistoricalByCategory[cat] = v.Round(2)
	}

	return report, nil
}

// ComputeTrend produces monthCount consecutive month buckets ending at the
// reference date's month, oldest first. A subscription contributes its
// monthly cost to bucket M when it is currently active and had already
// started by the end of M; no cancellation timestamp is retained, so
// currently-cancelled subscriptions never appear in past buckets. A
// subscription is counted as new in the bucket its first billing date falls
// in.
func ComputeTrend(subscriptions []*domain.Subscription, rates RateTable, target domain.Currency, referenceDate time.Time, monthCount int) *domain.TrendSeries {
	if monthCount <= 0 {
		monthCount = 12
	}

	series := &domain.TrendSeries{
		Currency: target,
		Months:   make([]domain.TrendPoint, 0, monthCount),
	}

	current := monthStart(referenceDate)
	for i := monthCount - 1; i >= 0; i-- {
		bucket := current.AddDate(0, -i, 0)
		nextBucket := bucket.AddDate(0, 1, 0)

		var total decimal.Decimal
		newCount := 0

		for _, sub := range subscriptions {
			first := DateOnly(sub.FirstBillingDate)
			if !sub.IsActive || !first.Before(nextBucket) {
				continue
			}

			total = total.Add(rates.MonthlyCost(sub.Amount, sub.Currency, sub.BillingCycle, sub.CustomCycleDays, target))
			if !first.Before(bucket) {
				newCount++
			}
		}

		series.Months = append(series.Months, domain.TrendPoint{
			MonthKey:         bucket.Format(trendMonthKeyFormat),
			Label:            bucket.Format("Jan 2006"),
			Total:            total.Round(2),
			NewSubscriptions: newCount,
		})
	}

	return series
}

// ComputeUpcoming returns the active subscriptions renewing within the given
// number of days, sorted by next billing date, each decorated with its
// renewal countdown and reminder flag. The next billing date is recomputed
// from the schedule rather than trusted from the stored row. Empty input
// yields an empty list.
func ComputeUpcoming(subscriptions []*domain.Subscription, withinDays int, referenceDate time.Time) ([]domain.UpcomingRenewal, error) {
	cutoff := DateOnly(referenceDate).AddDate(0, 0, withinDays)

	upcoming := make([]domain.UpcomingRenewal, 0)
	for _, sub := range subscriptions {
		if !sub.IsActive {
			continue
		}

		next, err := NextBillingDate(sub.FirstBillingDate, sub.BillingCycle, sub.CustomCycleDays, referenceDate)
		if err != nil {
			return nil, err
		}
		if next.After(cutoff) {
			continue
		}

		entry := domain.UpcomingRenewal{
			Subscription:     *sub,
			DaysUntilRenewal: DaysUntilRenewal(next, referenceDate),
			ReminderDue:      IsReminderDue(next, sub.RemindDaysBefore, referenceDate),
		}
		entry.NextBillingDate = next
		upcoming = append(upcoming, entry)
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextBillingDate.Before(upcoming[j].NextBillingDate)
	})

	return upcoming, nil
}

// ComputeNextMonthForecast lists the renewals falling in the calendar month
// after the reference date, with amounts converted to the target currency
// and a full-precision total rounded at the boundary.
func ComputeNextMonthForecast(subscriptions []*domain.Subscription, rates RateTable, target domain.Currency, referenceDate time.Time) (*domain.NextMonthForecast, error) {
	start := monthStart(referenceDate).AddDate(0, 1, 0)
	end := start.AddDate(0, 1, 0) // exclusive

	forecast := &domain.NextMonthForecast{
		Month:    start.Format(trendMonthKeyFormat),
		Label:    start.Format("January 2006"),
		Currency: target,
		Renewals: make([]domain.ForecastRenewal, 0),
	}

	var total decimal.Decimal
	for _, sub := range subscriptions {
		if !sub.IsActive {
			continue
		}

		next, err := NextBillingDate(sub.FirstBillingDate, sub.BillingCycle, sub.CustomCycleDays, referenceDate)
		if err != nil {
			return nil, err
		}
		if next.Before(start) || !next.Before(end) {
			continue
		}

		converted := rates.Convert(sub.Amount, sub.Currency, target)
		total = total.Add(converted)
		forecast.Renewals = append(forecast.Renewals, domain.ForecastRenewal{
			ID:              sub.ID,
			Name:            sub.Name,
			Amount:          sub.Amount,
			Currency:        sub.Currency,
			ConvertedAmount: converted.Round(2),
			NextBillingDate: next,
			Category:        sub.Category,
		})
	}

	sort.Slice(forecast.Renewals, func(i, j int) bool {
		return forecast.Renewals[i].NextBillingDate.Before(forecast.Renewals[j].NextBillingDate)
	})

	forecast.TotalAmount = total.Round(2)
	forecast.SubscriptionCount = len(forecast.Renewals)
	return forecast, nil
}

// ComputeReminderDigest collects the active subscriptions whose reminder
// window is open and groups them by urgency: three days or less, four to
// seven, and beyond.
func ComputeReminderDigest(subscriptions []*domain.Subscription, referenceDate time.Time) (*domain.ReminderDigest, error) {
	digest := &domain.ReminderDigest{
		Urgent:   make([]domain.UpcomingRenewal, 0),
		Soon:     make([]domain.UpcomingRenewal, 0),
		Upcoming: make([]domain.UpcomingRenewal, 0),
	}

	for _, sub := range subscriptions {
		if !sub.IsActive {
			continue
		}

		next, err := NextBillingDate(sub.FirstBillingDate, sub.BillingCycle, sub.CustomCycleDays, referenceDate)
		if err != nil {
			return nil, err
		}
		if !IsReminderDue(next, sub.RemindDaysBefore, referenceDate) {
			continue
		}

		entry := domain.UpcomingRenewal{
			Subscription:     *sub,
			DaysUntilRenewal: DaysUntilRenewal(next, referenceDate),
			ReminderDue:      true,
		}
		entry.NextBillingDate = next

		switch {
		case entry.DaysUntilRenewal <= 3:
			digest.Urgent = append(digest.Urgent, entry)
		case entry.DaysUntilRenewal <= 7:
			digest.Soon = append(digest.Soon, entry)
		default:
			digest.Upcoming = append(digest.Upcoming, entry)
		}
	}

	return digest, nil
}
