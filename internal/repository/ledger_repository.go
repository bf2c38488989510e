package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/domain"
	"github.com/pntme/Retail-management/internal/ledger"
)

type RecordMovementInput struct {
	ProductID   string
	Type        domain.TransactionType
	Quantity    int
	UnitCost    float64
	UnitPrice   float64
	Vendor      *string
	ReferenceNo *string
	Notes       *string
	CreatedBy   *string
}

// RecordMovement appends one immutable row to the inventory ledger. There is
// no update or delete path; corrections are reversing entries.
func (r *Repository) RecordMovement(ctx context.Context, input RecordMovementInput) (*domain.InventoryTransaction, error) {
	var recorded *domain.InventoryTransaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tr, err := recordMovementTx(ctx, tx, input)
		if err != nil {
			return err
		}
		recorded = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func recordMovementTx(ctx context.Context, tx pgx.Tx, input RecordMovementInput) (*domain.InventoryTransaction, error) {
	if !input.Type.Valid() {
		return nil, domain.Validationf("unknown transaction type %q", input.Type)
	}
	if input.Quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}

	productName, err := productNameTx(ctx, tx, input.ProductID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.Validationf("unknown product %q", input.ProductID)
		}
		return nil, err
	}

	entry := domain.InventoryTransaction{
		ID:          uuid.NewString(),
		ProductID:   input.ProductID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		UnitCost:    input.UnitCost,
		UnitPrice:   input.UnitPrice,
		TotalAmount: ledger.TotalAmount(input.Type, input.Quantity, input.UnitCost, input.UnitPrice),
		Vendor:      input.Vendor,
		ReferenceNo: input.ReferenceNo,
		Notes:       input.Notes,
		CreatedBy:   input.CreatedBy,
		ProductName: productName,
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO inventory_transactions
			(id, product_id, transaction_type, quantity, unit_cost, unit_price, total_amount,
			 vendor, reference_no, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING transaction_date
	`,
		entry.ID, entry.ProductID, entry.Type, entry.Quantity, entry.UnitCost, entry.UnitPrice,
		entry.TotalAmount, entry.Vendor, entry.ReferenceNo, entry.Notes, entry.CreatedBy,
	)
	if err := row.Scan(&entry.TransactionDate); err != nil {
		return nil, fmt.Errorf("insert inventory transaction: %w", err)
	}
	return &entry, nil
}

// CurrentStock replays the product's full ledger history and returns the
// signed quantity sum.
func (r *Repository) CurrentStock(ctx context.Context, productID string) (int, error) {
	transactions, err := r.productTransactions(ctx, productID)
	if err != nil {
		return 0, err
	}
	return ledger.Stock(transactions), nil
}

// AverageCost replays the product's PURCHASE history and returns the
// quantity-weighted mean unit cost, 0 with no purchases.
func (r *Repository) AverageCost(ctx context.Context, productID string) (float64, error) {
	transactions, err := r.productTransactions(ctx, productID)
	if err != nil {
		return 0, err
	}
	return ledger.AverageCost(transactions), nil
}

func (r *Repository) productTransactions(ctx context.Context, productID string) ([]domain.InventoryTransaction, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check product %s: %w", productID, err)
	}
	if !exists {
		return nil, domain.NotFound("product")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, transaction_type, quantity, unit_cost, unit_price, total_amount,
		       vendor, reference_no, notes, transaction_date, created_by
		FROM inventory_transactions
		WHERE product_id = $1
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for product %s: %w", productID, err)
	}
	defer rows.Close()

	transactions := make([]domain.InventoryTransaction, 0)
	for rows.Next() {
		var tr domain.InventoryTransaction
		if err := rows.Scan(
			&tr.ID, &tr.ProductID, &tr.Type, &tr.Quantity, &tr.UnitCost, &tr.UnitPrice, &tr.TotalAmount,
			&tr.Vendor, &tr.ReferenceNo, &tr.Notes, &tr.TransactionDate, &tr.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// ListTransactions returns recent ledger rows, newest first, with the product
// name joined in.
func (r *Repository) ListTransactions(ctx context.Context, productID string, limit int) ([]domain.InventoryTransaction, error) {
	limit = normalizeLimit(limit, 100, 1000)
	query := `
		SELECT it.id, it.product_id, it.transaction_type, it.quantity, it.unit_cost, it.unit_price,
		       it.total_amount, it.vendor, it.reference_no, it.notes, it.transaction_date, it.created_by,
		       p.name
		FROM inventory_transactions it
		JOIN products p ON p.id = it.product_id
		WHERE ($1 = '' OR it.product_id = $1)
		ORDER BY it.transaction_date DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(productID), limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.InventoryTransaction, 0, limit)
	for rows.Next() {
		var tr domain.InventoryTransaction
		if err := rows.Scan(
			&tr.ID, &tr.ProductID, &tr.Type, &tr.Quantity, &tr.UnitCost, &tr.UnitPrice, &tr.TotalAmount,
			&tr.Vendor, &tr.ReferenceNo, &tr.Notes, &tr.TransactionDate, &tr.CreatedBy, &tr.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
