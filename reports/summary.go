package reports

import (
	"sort"
	"time"

	"chikondi-pos/models"
)

const (
	summaryWindow   = 30 * 24 * time.Hour
	dailyAvgWindow  = 7 * 24 * time.Hour
	dailyAvgDays    = 7
	topProductCount = 5
	lowStockCutoff  = 10
)

// TopProduct is a product ranked by units sold over the summary window.
type TopProduct struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// BusinessSummary is the thirty-day health report of the shop. All values
// are derived from the inputs alone; computing it twice on the same data
// gives the same result.
type BusinessSummary struct {
	GeneratedAt     int64        `json:"generatedAt"`
	Revenue         float64      `json:"revenue"`
	Expenses        float64      `json:"expenses"`
	NetProfit       float64      `json:"netProfit"`
	ProfitMargin    float64      `json:"profitMargin"`
	SalesCount      int          `json:"salesCount"`
	AvgDailyRevenue float64      `json:"avgDailyRevenue"`
	TopProducts     []TopProduct `json:"topProducts"`
	TotalProducts   int          `json:"totalProducts"`
	LowStock        int          `json:"lowStock"`
	OutOfStock      int          `json:"outOfStock"`
	TotalCustomers  int          `json:"totalCustomers"`
}

// GenerateBusinessSummary computes the thirty-day summary at the reference
// time. Pure function: no store access, no clock reads.
func GenerateBusinessSummary(sales []models.Sale, expenses []models.Expense, products []models.Product, customers []models.Customer, now time.Time) BusinessSummary {
	cutoff := models.Millis(now.Add(-summaryWindow))
	weekCutoff := models.Millis(now.Add(-dailyAvgWindow))
	nowMs := models.Millis(now)

	summary := BusinessSummary{
		GeneratedAt:    nowMs,
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
	}

	var weekRevenue float64
	byProduct := map[string]*TopProduct{}

	for _, s := range sales {
		if s.Timestamp < cutoff || s.Timestamp > nowMs {
			continue
		}
		summary.Revenue += s.Total
		summary.SalesCount++
		if s.Timestamp >= weekCutoff {
			weekRevenue += s.Total
		}

		for _, item := range s.Items {
			tp, ok := byProduct[item.Name]
			if !ok {
				tp = &TopProduct{Name: item.Name}
				byProduct[item.Name] = tp
			}
			tp.Quantity += item.Quantity
			tp.Revenue += item.Total
		}
	}

	for _, e := range expenses {
		if e.Timestamp < cutoff || e.Timestamp > nowMs {
			continue
		}
		summary.Expenses += e.Amount
	}

	summary.NetProfit = summary.Revenue - summary.Expenses
	if summary.Revenue > 0 {
		summary.ProfitMargin = summary.NetProfit / summary.Revenue * 100
	}
	summary.AvgDailyRevenue = weekRevenue / dailyAvgDays

	for _, p := range products {
		if p.Quantity == 0 {
			summary.OutOfStock++
		}
		if p.Quantity < lowStockCutoff {
			summary.LowStock++
		}
	}

	top := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topProductCount {
		top = top[:topProductCount]
	}
	summary.TopProducts = top

	return summary
}
