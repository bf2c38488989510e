package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDailyOuterJoin(t *testing.T) {
	revenue := map[string]float64{
		"2025-06-01": 1000,
		"2025-06-03": 400,
	}
	cost := map[string]float64{
		"2025-06-01": 600,
		"2025-06-02": 150,
	}

	daily := MergeDaily(revenue, cost)
	require.Len(t, daily, 3)

	assert.Equal(t, DailyProfitLoss{Date: "2025-06-01", Revenue: 1000, Cost: 600, Profit: 400}, daily[0])
	assert.Equal(t, DailyProfitLoss{Date: "2025-06-02", Revenue: 0, Cost: 150, Profit: -150}, daily[1])
	assert.Equal(t, DailyProfitLoss{Date: "2025-06-03", Revenue: 400, Cost: 0, Profit: 400}, daily[2])
}

func TestMergeDailyEmpty(t *testing.T) {
	assert.Empty(t, MergeDaily(nil, nil))
}

func TestBuildProfitLoss(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	revenue := map[string]float64{"2025-06-01": 1000, "2025-06-02": 500}
	cost := map[string]float64{"2025-06-01": 900}

	report := BuildProfitLoss(from, to, revenue, cost, []PaymentStatusTotal{
		{PaymentStatus: PaymentPaid, BillCount: 2, Total: 1200},
		{PaymentStatus: PaymentUnpaid, BillCount: 1, Total: 300},
	})

	assert.Equal(t, "2025-06-01", report.FromDate)
	assert.Equal(t, "2025-06-30", report.ToDate)
	assert.Equal(t, 1500.0, report.Revenue)
	assert.Equal(t, 900.0, report.Cost)
	assert.Equal(t, 600.0, report.Profit)
	assert.InDelta(t, 40.0, report.MarginPercent, 1e-9)
	assert.Len(t, report.Daily, 2)
	assert.Len(t, report.ByPaymentStatus, 2)
}

func TestBuildProfitLossZeroRevenue(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	report := BuildProfitLoss(from, from, nil, map[string]float64{"2025-06-01": 100}, nil)

	assert.Equal(t, 0.0, report.Revenue)
	assert.Equal(t, -100.0, report.Profit)
	assert.Equal(t, 0.0, report.MarginPercent)
}
