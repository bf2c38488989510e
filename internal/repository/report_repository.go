package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pntme/Retail-management/internal/domain"
)

// ProfitLoss aggregates the period report. Revenue comes from finalized
// bills, cost from the ledger's PURCHASE rows in the same window.
func (r *Repository) ProfitLoss(ctx context.Context, from, to time.Time) (*domain.ProfitLossReport, error) {
	revenue, err := r.dailyTotals(ctx, `
		SELECT to_char(bill_date, 'YYYY-MM-DD'), SUM(total)::double precision
		FROM bills
		WHERE status = 'finalized' AND bill_date >= $1 AND bill_date <= $2
		GROUP BY 1
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}

	cost, err := r.dailyTotals(ctx, `
		SELECT to_char(transaction_date, 'YYYY-MM-DD'), SUM(total_amount)::double precision
		FROM inventory_transactions
		WHERE transaction_type = 'PURCHASE' AND transaction_date >= $1 AND transaction_date <= $2
		GROUP BY 1
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate cost: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT payment_status, COUNT(*), SUM(total)::double precision
		FROM bills
		WHERE status = 'finalized' AND bill_date >= $1 AND bill_date <= $2
		GROUP BY payment_status
		ORDER BY payment_status
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate payment status: %w", err)
	}
	defer rows.Close()

	byPayment := make([]domain.PaymentStatusTotal, 0, 2)
	for rows.Next() {
		var t domain.PaymentStatusTotal
		if err := rows.Scan(&t.PaymentStatus, &t.BillCount, &t.Total); err != nil {
			return nil, fmt.Errorf("scan payment total: %w", err)
		}
		byPayment = append(byPayment, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment totals: %w", err)
	}

	report := domain.BuildProfitLoss(from, to, revenue, cost, byPayment)
	return &report, nil
}

func (r *Repository) dailyTotals(ctx context.Context, query string, from, to time.Time) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var day string
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		totals[day] = total
	}
	return totals, rows.Err()
}

type DashboardStats struct {
	TotalProducts    int     `json:"total_products"`
	LowStockProducts int     `json:"low_stock_products"`
	TotalCustomers   int     `json:"total_customers"`
	ActiveJobCards   int     `json:"active_job_cards"`
	TodaySalesTotal  float64 `json:"today_sales_total"`
	MonthSalesTotal  float64 `json:"month_sales_total"`
	UnpaidBills      int     `json:"unpaid_bills"`
	UnpaidBillsTotal float64 `json:"unpaid_bills_total"`
	OverdueServices  int     `json:"overdue_services"`
	UpcomingServices int     `json:"upcoming_services"`
}

func (r *Repository) DashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&stats.TotalProducts); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	low, err := r.LowStockProducts(ctx, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	stats.LowStockProducts = len(low)

	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&stats.TotalCustomers); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM job_cards WHERE status IN ('open', 'in_progress')",
	).Scan(&stats.ActiveJobCards); err != nil {
		return nil, fmt.Errorf("count active job cards: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)::double precision
		FROM bills
		WHERE status = 'finalized' AND bill_date::date = CURRENT_DATE
	`).Scan(&stats.TodaySalesTotal); err != nil {
		return nil, fmt.Errorf("sum today's sales: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)::double precision
		FROM bills
		WHERE status = 'finalized' AND date_trunc('month', bill_date) = date_trunc('month', CURRENT_DATE)
	`).Scan(&stats.MonthSalesTotal); err != nil {
		return nil, fmt.Errorf("sum month's sales: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)::double precision
		FROM bills
		WHERE status = 'finalized' AND payment_status = 'unpaid'
	`).Scan(&stats.UnpaidBills, &stats.UnpaidBillsTotal); err != nil {
		return nil, fmt.Errorf("sum unpaid bills: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE next_service_date >= CURRENT_DATE - INTERVAL '7 days'
				AND next_service_date < CURRENT_DATE),
			COUNT(*) FILTER (WHERE next_service_date > CURRENT_DATE
				AND next_service_date <= CURRENT_DATE + INTERVAL '7 days')
		FROM customers
		WHERE next_service_date IS NOT NULL
	`).Scan(&stats.OverdueServices, &stats.UpcomingServices); err != nil {
		return nil, fmt.Errorf("count service reminders: %w", err)
	}

	return &stats, nil
}

// RecentSales lists the latest finalized bills for the dashboard.
func (r *Repository) RecentSales(ctx context.Context, limit int) ([]domain.Bill, error) {
	return r.ListBills(ctx, BillFilter{Status: string(domain.BillFinalized), Limit: normalizeLimit(limit, 5, 50)})
}

// CustomersDueForService lists customers whose next service date has passed,
// for the reminder call screen.
func (r *Repository) CustomersDueForService(ctx context.Context, limit int) ([]domain.Customer, error) {
	limit = normalizeLimit(limit, 100, 500)
	rows, err := r.pool.Query(ctx, "SELECT "+customerColumns+`
		FROM customers
		WHERE next_service_date IS NOT NULL AND next_service_date <= CURRENT_DATE
		ORDER BY next_service_date
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list due customers: %w", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}
