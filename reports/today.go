package reports

import (
	"time"

	"chikondi-pos/models"
)

// TodayStats is the dashboard snapshot for one calendar day.
type TodayStats struct {
	SalesTotal    float64 `json:"salesTotal"`
	SalesCount    int     `json:"salesCount"`
	ExpensesTotal float64 `json:"expensesTotal"`
	Profit        float64 `json:"profit"`
	LowStockCount int     `json:"lowStockCount"`
}

// DayBounds returns the inclusive Unix-millisecond range of the calendar day
// containing t, in t's location. The end is derived from the next civil
// midnight so DST days of 23 or 25 hours still bound correctly.
func DayBounds(t time.Time) (from, to int64) {
	year, month, day := t.Date()
	loc := t.Location()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, loc).Add(-time.Millisecond)
	return models.Millis(start), models.Millis(end)
}

// ComputeTodayStats aggregates the day containing now. A sale at exactly
// midnight belongs to the starting day; one at the last millisecond still
// counts.
func ComputeTodayStats(sales []models.Sale, expenses []models.Expense, products []models.Product, now time.Time) TodayStats {
	from, to := DayBounds(now)

	var stats TodayStats
	for _, s := range sales {
		if s.Timestamp >= from && s.Timestamp <= to {
			stats.SalesTotal += s.Total
			stats.SalesCount++
		}
	}
	for _, e := range expenses {
		if e.Timestamp >= from && e.Timestamp <= to {
			stats.ExpensesTotal += e.Amount
		}
	}
	stats.Profit = stats.SalesTotal - stats.ExpensesTotal

	for _, p := range products {
		if p.IsLowStock() {
			stats.LowStockCount++
		}
	}
	return stats
}
