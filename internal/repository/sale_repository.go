package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/billing"
	"github.com/pntme/Retail-management/internal/domain"
)

type SaleItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice *float64
}

type SaleCreateInput struct {
	CustomerID    *string
	Items         []SaleItemInput
	Discount      float64
	Tax           float64
	PaymentMethod string
	CreatedBy     *string
}

// CreateSale records a counter sale: the sale row, its items, one SALE ledger
// row per item and the frozen bill, all in one transaction.
func (r *Repository) CreateSale(ctx context.Context, input SaleCreateInput) (*domain.Sale, *domain.Bill, error) {
	if len(input.Items) == 0 {
		return nil, nil, domain.Validationf("sale needs at least one item")
	}

	var sale *domain.Sale
	var bill *domain.Bill
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var customer *domain.Customer
		if input.CustomerID != nil {
			var c domain.Customer
			row := tx.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", *input.CustomerID)
			err := row.Scan(
				&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
				&c.VehicleType, &c.VehicleNumber, &c.CreditLimit, &c.Balance,
				&c.LastServiceDate, &c.NextServiceDate, &c.CreatedAt,
			)
			if err != nil {
				if err == pgx.ErrNoRows {
					return domain.NotFound("customer")
				}
				return fmt.Errorf("load customer: %w", err)
			}
			customer = &c
		}

		s := domain.Sale{
			ID:            uuid.NewString(),
			CustomerID:    input.CustomerID,
			Discount:      input.Discount,
			Tax:           input.Tax,
			PaymentMethod: input.PaymentMethod,
			CreatedBy:     input.CreatedBy,
		}

		var subtotal float64
		for _, in := range input.Items {
			if in.Quantity <= 0 {
				return domain.Validationf("quantity must be positive")
			}
			var productName string
			var sellPrice float64
			err := tx.QueryRow(ctx,
				"SELECT name, sell_price FROM products WHERE id = $1 FOR UPDATE",
				in.ProductID).Scan(&productName, &sellPrice)
			if err != nil {
				if err == pgx.ErrNoRows {
					return domain.NotFound("product")
				}
				return fmt.Errorf("load product: %w", err)
			}

			unitPrice := sellPrice
			if in.UnitPrice != nil {
				unitPrice = *in.UnitPrice
			}
			s.Items = append(s.Items, domain.SaleItem{
				ID:          uuid.NewString(),
				SaleID:      s.ID,
				ProductID:   in.ProductID,
				Quantity:    in.Quantity,
				UnitPrice:   unitPrice,
				Subtotal:    unitPrice * float64(in.Quantity),
				ProductName: productName,
			})
			subtotal += unitPrice * float64(in.Quantity)
		}
		s.TotalAmount = subtotal - s.Discount + s.Tax

		row := tx.QueryRow(ctx, `
			INSERT INTO sales (id, customer_id, total_amount, discount, tax, payment_method, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, s.ID, s.CustomerID, s.TotalAmount, s.Discount, s.Tax, s.PaymentMethod, s.CreatedBy)
		if err := row.Scan(&s.CreatedAt); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		for _, item := range s.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}

			avgCost, err := averageCostTx(ctx, tx, item.ProductID)
			if err != nil {
				return err
			}
			if _, err := recordMovementTx(ctx, tx, RecordMovementInput{
				ProductID:   item.ProductID,
				Type:        domain.TypeSale,
				Quantity:    item.Quantity,
				UnitCost:    avgCost,
				UnitPrice:   item.UnitPrice,
				ReferenceNo: &s.ID,
				CreatedBy:   input.CreatedBy,
			}); err != nil {
				return err
			}
		}

		snapshot := domain.CustomerSnapshot{Name: "Walk-in Customer"}
		if customer != nil {
			snapshot = billing.SnapshotCustomer(*customer)
		}
		paymentStatus := domain.PaymentUnpaid
		if s.PaymentMethod == "cash" {
			paymentStatus = domain.PaymentPaid
		}
		b := domain.Bill{
			ID:            uuid.NewString(),
			BillNumber:    billing.SaleBillNumber(time.Now()),
			SaleID:        &s.ID,
			CustomerData:  snapshot,
			Items:         billing.SaleItems(s.Items),
			Discount:      s.Discount,
			Subtotal:      subtotal,
			Total:         s.TotalAmount,
			Status:        domain.BillFinalized,
			PaymentStatus: paymentStatus,
		}
		if err := insertBillTx(ctx, tx, &b); err != nil {
			return err
		}

		if customer != nil {
			s.CustomerName = &customer.Name
		}
		sale = &s
		bill = &b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, bill, nil
}

func (r *Repository) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.customer_id, s.total_amount, s.discount, s.tax, s.payment_method,
		       s.created_by, s.created_at, c.name
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1
	`, id)
	var s domain.Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.TotalAmount, &s.Discount, &s.Tax,
		&s.PaymentMethod, &s.CreatedBy, &s.CreatedAt, &s.CustomerName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.NotFound("sale")
		}
		return nil, fmt.Errorf("get sale %s: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.subtotal, p.name
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.ProductName); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListSales(ctx context.Context, from, to *time.Time, limit int) ([]domain.Sale, error) {
	limit = normalizeLimit(limit, 100, 500)
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.customer_id, s.total_amount, s.discount, s.tax, s.payment_method,
		       s.created_by, s.created_at, c.name
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		ORDER BY s.created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.TotalAmount, &s.Discount, &s.Tax,
			&s.PaymentMethod, &s.CreatedBy, &s.CreatedAt, &s.CustomerName); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}
