package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/billing"
	"github.com/pntme/Retail-management/internal/domain"
)

// Lock class for the advisory lock serializing per-year bill numbering.
const billNumberLockClass = 7401

// nextJobCardBillNumberTx allocates the next sequential bill number for the
// year. The advisory lock holds until the transaction ends, so two concurrent
// completions cannot read the same maximum.
func nextJobCardBillNumberTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error) {
	year := at.Year()
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", billNumberLockClass, year); err != nil {
		return "", fmt.Errorf("acquire bill number lock: %w", err)
	}

	rows, err := tx.Query(ctx,
		"SELECT bill_number FROM bills WHERE bill_number LIKE $1",
		billing.SequencePrefix(year)+"%",
	)
	if err != nil {
		return "", fmt.Errorf("load bill numbers: %w", err)
	}
	defer rows.Close()

	existing := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return "", fmt.Errorf("scan bill number: %w", err)
		}
		existing = append(existing, n)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate bill numbers: %w", err)
	}
	number, err := billing.NextSequential(existing, year)
	if err != nil {
		return "", domain.Computation("allocate bill number", err)
	}
	return number, nil
}

func insertBillTx(ctx context.Context, tx pgx.Tx, bill *domain.Bill) error {
	customerData, err := json.Marshal(bill.CustomerData)
	if err != nil {
		return domain.Computation("marshal customer snapshot", err)
	}
	items, err := json.Marshal(bill.Items)
	if err != nil {
		return domain.Computation("marshal bill items", err)
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO bills
			(id, bill_number, job_card_id, sale_id, customer_data, bill_items,
			 labour_charge, discount, subtotal, total, status, payment_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING bill_date, created_at
	`,
		bill.ID, bill.BillNumber, bill.JobCardID, bill.SaleID, customerData, items,
		bill.LabourCharge, bill.Discount, bill.Subtotal, bill.Total, bill.Status, bill.PaymentStatus, bill.Notes,
	)
	if err := row.Scan(&bill.BillDate, &bill.CreatedAt); err != nil {
		return domain.Computation("insert bill", err)
	}
	return nil
}

const billColumns = `
	id, bill_number, job_card_id, sale_id, bill_date, customer_data, bill_items,
	labour_charge, discount, subtotal, total, status, payment_status, notes, created_at
`

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var b domain.Bill
	var customerData, items []byte
	err := row.Scan(
		&b.ID, &b.BillNumber, &b.JobCardID, &b.SaleID, &b.BillDate, &customerData, &items,
		&b.LabourCharge, &b.Discount, &b.Subtotal, &b.Total, &b.Status, &b.PaymentStatus,
		&b.Notes, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(customerData, &b.CustomerData); err != nil {
		return nil, fmt.Errorf("decode customer snapshot: %w", err)
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("decode bill items: %w", err)
	}
	return &b, nil
}

func (r *Repository) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+billColumns+" FROM bills WHERE id = $1", id)
	b, err := scanBill(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.NotFound("bill")
		}
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	return b, nil
}

type BillFilter struct {
	From          *time.Time
	To            *time.Time
	Status        string
	PaymentStatus string
	Search        string
	Limit         int
}

func (r *Repository) ListBills(ctx context.Context, filter BillFilter) ([]domain.Bill, error) {
	limit := normalizeLimit(filter.Limit, 100, 500)

	conditions := make([]string, 0, 5)
	args := make([]any, 0, 6)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.From != nil {
		conditions = append(conditions, "bill_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "bill_date <= "+arg(*filter.To))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		conditions = append(conditions, "payment_status = "+arg(filter.PaymentStatus))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg(s)
		conditions = append(conditions,
			"(bill_number ILIKE '%' || "+p+" || '%' OR customer_data->>'name' ILIKE '%' || "+p+" || '%')")
	}

	query := "SELECT " + billColumns + " FROM bills"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY bill_date DESC LIMIT " + arg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := make([]domain.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

// MarkBillPaid flips payment_status to paid. Cancelled bills stay untouched.
func (r *Repository) MarkBillPaid(ctx context.Context, id string) (*domain.Bill, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bills SET payment_status = 'paid'
		WHERE id = $1 AND status = 'finalized'
	`, id)
	if err != nil {
		return nil, fmt.Errorf("mark bill paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetBill(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.Conflictf("bill is cancelled")
	}
	return r.GetBill(ctx, id)
}

// CancelBill marks the bill cancelled. The snapshot itself is never mutated.
func (r *Repository) CancelBill(ctx context.Context, id string) (*domain.Bill, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bills SET status = 'cancelled'
		WHERE id = $1 AND status = 'finalized'
	`, id)
	if err != nil {
		return nil, fmt.Errorf("cancel bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetBill(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.Conflictf("bill already cancelled")
	}
	return r.GetBill(ctx, id)
}
