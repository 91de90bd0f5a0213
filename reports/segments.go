package reports

import (
	"time"

	"chikondi-pos/models"
)

// Segment is a customer classification used for targeted follow-up.
type Segment string

const (
	// SegmentVIP is a big spender: lifetime purchases strictly above the
	// VIP threshold. Exactly at the threshold is not VIP.
	SegmentVIP Segment = "vip"
	// SegmentRegular has at least five transactions without crossing the
	// VIP threshold.
	SegmentRegular Segment = "regular"
	// SegmentNew was created within the last thirty days.
	SegmentNew Segment = "new"
	// SegmentInactive has not visited for over sixty days.
	SegmentInactive Segment = "inactive"
	// SegmentAll disables filtering.
	SegmentAll Segment = "all"
)

const (
	// VIPThreshold is lifetime purchase value above which a customer is VIP.
	VIPThreshold = 50000.0
	// RegularMinTransactions is the transaction count that makes a
	// customer a regular.
	RegularMinTransactions = 5

	newCustomerWindow = 30 * 24 * time.Hour
	inactiveAfter     = 60 * 24 * time.Hour
)

// InSegment reports whether a customer belongs to the segment at the given
// reference time. Segments are filters, not a partition: a customer can be
// both new and vip, or in no segment at all.
func InSegment(c models.Customer, segment Segment, now time.Time) bool {
	switch segment {
	case SegmentVIP:
		return c.TotalPurchases > VIPThreshold
	case SegmentRegular:
		return c.TotalTransactions >= RegularMinTransactions && c.TotalPurchases <= VIPThreshold
	case SegmentNew:
		return c.CreatedAt > models.Millis(now.Add(-newCustomerWindow))
	case SegmentInactive:
		return c.LastVisit < models.Millis(now.Add(-inactiveAfter))
	case SegmentAll:
		return true
	default:
		return false
	}
}

// FilterSegment returns the customers belonging to the segment, preserving
// input order.
func FilterSegment(customers []models.Customer, segment Segment, now time.Time) []models.Customer {
	var matched []models.Customer
	for _, c := range customers {
		if InSegment(c, segment, now) {
			matched = append(matched, c)
		}
	}
	return matched
}

// CustomerStats is an overview of the whole customer base at one point in
// time.
type CustomerStats struct {
	Total        int     `json:"total"`
	VIP          int     `json:"vip"`
	Regular      int     `json:"regular"`
	New          int     `json:"new"`
	Inactive     int     `json:"inactive"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalDebt    float64 `json:"totalDebt"`
	TotalCredit  float64 `json:"totalCredit"`
}

// ComputeCustomerStats counts segment membership and sums balances.
func ComputeCustomerStats(customers []models.Customer, now time.Time) CustomerStats {
	stats := CustomerStats{Total: len(customers)}
	for _, c := range customers {
		if InSegment(c, SegmentVIP, now) {
			stats.VIP++
		}
		if InSegment(c, SegmentRegular, now) {
			stats.Regular++
		}
		if InSegment(c, SegmentNew, now) {
			stats.New++
		}
		if InSegment(c, SegmentInactive, now) {
			stats.Inactive++
		}
		stats.TotalRevenue += c.TotalPurchases
		stats.TotalDebt += c.DebtBalance
		stats.TotalCredit += c.CreditBalance
	}
	return stats
}
