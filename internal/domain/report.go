package domain

import (
	"sort"
	"time"
)

type DailyProfitLoss struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

type PaymentStatusTotal struct {
	PaymentStatus PaymentStatus `json:"payment_status"`
	BillCount     int           `json:"bill_count"`
	Total         float64       `json:"total"`
}

type ProfitLossReport struct {
	FromDate        string               `json:"from_date"`
	ToDate          string               `json:"to_date"`
	Revenue         float64              `json:"revenue"`
	Cost            float64              `json:"cost"`
	Profit          float64              `json:"profit"`
	MarginPercent   float64              `json:"margin_percent"`
	Daily           []DailyProfitLoss    `json:"daily"`
	ByPaymentStatus []PaymentStatusTotal `json:"by_payment_status"`
}

const dateLayout = "2006-01-02"

// MergeDaily outer-joins per-day revenue and cost maps (keyed YYYY-MM-DD) into
// a sorted daily breakdown, zero-filling days present on only one side.
func MergeDaily(revenue, cost map[string]float64) []DailyProfitLoss {
	seen := make(map[string]struct{}, len(revenue)+len(cost))
	for day := range revenue {
		seen[day] = struct{}{}
	}
	for day := range cost {
		seen[day] = struct{}{}
	}

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]DailyProfitLoss, 0, len(days))
	for _, day := range days {
		r := revenue[day]
		c := cost[day]
		daily = append(daily, DailyProfitLoss{
			Date:    day,
			Revenue: r,
			Cost:    c,
			Profit:  r - c,
		})
	}
	return daily
}

// BuildProfitLoss assembles the report. Margin is 0 when revenue is 0.
func BuildProfitLoss(from, to time.Time, revenue, cost map[string]float64, byPayment []PaymentStatusTotal) ProfitLossReport {
	var totalRevenue, totalCost float64
	for _, v := range revenue {
		totalRevenue += v
	}
	for _, v := range cost {
		totalCost += v
	}

	profit := totalRevenue - totalCost
	margin := 0.0
	if totalRevenue != 0 {
		margin = profit / totalRevenue * 100
	}

	return ProfitLossReport{
		FromDate:        from.Format(dateLayout),
		ToDate:          to.Format(dateLayout),
		Revenue:         totalRevenue,
		Cost:            totalCost,
		Profit:          profit,
		MarginPercent:   margin,
		Daily:           MergeDaily(revenue, cost),
		ByPaymentStatus: byPayment,
	}
}
