package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/domain"
)

// productWithStockColumns derives quantity and weighted average purchase
// price from the ledger at read time. No stored counters exist anywhere.
const productWithStockColumns = `
	p.id,
	p.name,
	p.sell_price,
	p.vendor,
	p.rack_id,
	p.additional_info,
	p.created_at,
	p.updated_at,
	COALESCE(SUM(CASE WHEN it.transaction_type IN ('PURCHASE', 'ADJUSTMENT_IN') THEN it.quantity
	                  WHEN it.transaction_type IN ('SALE', 'ADJUSTMENT_OUT') THEN -it.quantity
	                  ELSE 0 END), 0)::int AS quantity,
	COALESCE(
		SUM(CASE WHEN it.transaction_type = 'PURCHASE' THEN it.quantity * it.unit_cost ELSE 0 END) /
		NULLIF(SUM(CASE WHEN it.transaction_type = 'PURCHASE' THEN it.quantity ELSE 0 END), 0),
		0
	)::double precision AS purchase_price`

type ProductCreateInput struct {
	Name           string
	SellPrice      float64
	Vendor         *string
	RackID         *string
	AdditionalInfo *string
}

func (r *Repository) ListProducts(ctx context.Context, search string) ([]domain.ProductWithStock, error) {
	query := `
		SELECT` + productWithStockColumns + `
		FROM products p
		LEFT JOIN inventory_transactions it ON it.product_id = p.id
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%')
		GROUP BY p.id
		ORDER BY p.name
	`
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.ProductWithStock, 0)
	for rows.Next() {
		p, err := scanProductWithStock(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.ProductWithStock, error) {
	query := `
		SELECT` + productWithStockColumns + `
		FROM products p
		LEFT JOIN inventory_transactions it ON it.product_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`
	product, err := scanProductWithStock(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("product")
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	product := domain.Product{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(input.Name),
		SellPrice:      input.SellPrice,
		Vendor:         input.Vendor,
		RackID:         input.RackID,
		AdditionalInfo: input.AdditionalInfo,
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, sell_price, vendor, rack_id, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, product.ID, product.Name, product.SellPrice, product.Vendor, product.RackID, product.AdditionalInfo)
	if err := row.Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, id string, input ProductCreateInput) (*domain.Product, error) {
	product := domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(input.Name),
		SellPrice:      input.SellPrice,
		Vendor:         input.Vendor,
		RackID:         input.RackID,
		AdditionalInfo: input.AdditionalInfo,
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, sell_price = $3, vendor = $4, rack_id = $5, additional_info = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, id, product.Name, product.SellPrice, product.Vendor, product.RackID, product.AdditionalInfo)
	if err := row.Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("product")
		}
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return &product, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("product")
	}
	return nil
}

// LowStockProducts lists products whose derived quantity is at or below the
// threshold, lowest first.
func (r *Repository) LowStockProducts(ctx context.Context, threshold int) ([]domain.ProductWithStock, error) {
	query := `
		SELECT` + productWithStockColumns + `
		FROM products p
		LEFT JOIN inventory_transactions it ON it.product_id = p.id
		GROUP BY p.id
		HAVING COALESCE(SUM(CASE WHEN it.transaction_type IN ('PURCHASE', 'ADJUSTMENT_IN') THEN it.quantity
		                         WHEN it.transaction_type IN ('SALE', 'ADJUSTMENT_OUT') THEN -it.quantity
		                         ELSE 0 END), 0) <= $1
		ORDER BY quantity
	`
	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.ProductWithStock, 0)
	for rows.Next() {
		p, err := scanProductWithStock(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock products: %w", err)
	}
	return products, nil
}

func scanProductWithStock(row pgx.Row) (domain.ProductWithStock, error) {
	var p domain.ProductWithStock
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SellPrice,
		&p.Vendor,
		&p.RackID,
		&p.AdditionalInfo,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Quantity,
		&p.PurchasePrice,
	); err != nil {
		return domain.ProductWithStock{}, err
	}
	return p, nil
}

// productNameTx resolves an existing product's name inside a transaction,
// locking the row so the product cannot vanish mid-write.
func productNameTx(ctx context.Context, tx pgx.Tx, productID string) (string, error) {
	var name string
	err := tx.QueryRow(ctx, "SELECT name FROM products WHERE id = $1 FOR UPDATE", productID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.NotFound("product")
	}
	if err != nil {
		return "", fmt.Errorf("load product %s: %w", productID, err)
	}
	return name, nil
}
