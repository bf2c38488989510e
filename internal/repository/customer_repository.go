package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/domain"
)

type CustomerInput struct {
	Name          string
	Email         *string
	Phone         *string
	Address       *string
	VehicleType   *string
	VehicleNumber *string
	CreditLimit   float64
}

const customerColumns = `
	id, name, email, phone, address, vehicle_type, vehicle_number,
	credit_limit, balance, last_service_date, next_service_date, created_at
`

func (r *Repository) ListCustomers(ctx context.Context, search string, limit int) ([]domain.Customer, error) {
	limit = normalizeLimit(limit, 100, 500)
	query := "SELECT " + customerColumns + `
		FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%'
			OR phone ILIKE '%' || $1 || '%'
			OR vehicle_number ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(search), limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}

func (r *Repository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	c, err := scanCustomer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.NotFound("customer")
		}
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return c, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	if err := r.checkVehicleNumberFree(ctx, input.VehicleNumber, ""); err != nil {
		return nil, err
	}
	c := domain.Customer{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		VehicleType:   input.VehicleType,
		VehicleNumber: input.VehicleNumber,
		CreditLimit:   input.CreditLimit,
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, email, phone, address, vehicle_type, vehicle_number, credit_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, c.ID, c.Name, c.Email, c.Phone, c.Address, c.VehicleType, c.VehicleNumber, c.CreditLimit)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	if err := r.checkVehicleNumberFree(ctx, input.VehicleNumber, id); err != nil {
		return nil, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, address = $5,
		    vehicle_type = $6, vehicle_number = $7, credit_limit = $8
		WHERE id = $1
	`, id, input.Name, input.Email, input.Phone, input.Address,
		input.VehicleType, input.VehicleNumber, input.CreditLimit)
	if err != nil {
		return nil, fmt.Errorf("update customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NotFound("customer")
	}
	return r.GetCustomer(ctx, id)
}

func (r *Repository) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("customer")
	}
	return nil
}

func (r *Repository) checkVehicleNumberFree(ctx context.Context, vehicleNumber *string, excludeID string) error {
	if vehicleNumber == nil || strings.TrimSpace(*vehicleNumber) == "" {
		return nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM customers WHERE vehicle_number = $1 AND id <> $2)
	`, *vehicleNumber, excludeID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check vehicle number: %w", err)
	}
	if exists {
		return domain.Conflictf("vehicle number %s already registered", *vehicleNumber)
	}
	return nil
}

func (r *Repository) ListCallLogs(ctx context.Context, customerID string) ([]domain.CallLog, error) {
	if _, err := r.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, note, created_by, created_at
		FROM call_logs
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.CallLog, 0)
	for rows.Next() {
		var l domain.CallLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.Note, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call logs: %w", err)
	}
	return logs, nil
}

func (r *Repository) AddCallLog(ctx context.Context, customerID, note string, createdBy *string) (*domain.CallLog, error) {
	if _, err := r.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(note) == "" {
		return nil, domain.Validationf("note is required")
	}
	l := domain.CallLog{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Note:       note,
		CreatedBy:  createdBy,
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO call_logs (id, customer_id, note, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, l.ID, l.CustomerID, l.Note, l.CreatedBy)
	if err := row.Scan(&l.CreatedAt); err != nil {
		return nil, fmt.Errorf("add call log: %w", err)
	}
	return &l, nil
}

// ServiceHistory lists the customer's completed job cards, newest first.
func (r *Repository) ServiceHistory(ctx context.Context, customerID string) ([]domain.JobCard, error) {
	if _, err := r.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, vehicle_number, job_number, status, assignee, notes,
		       labour_charge, discount, created_by, created_at, closed_at
		FROM job_cards
		WHERE customer_id = $1 AND status = 'completed'
		ORDER BY closed_at DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("load service history: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.JobCard, 0)
	for rows.Next() {
		var jc domain.JobCard
		if err := rows.Scan(
			&jc.ID, &jc.CustomerID, &jc.VehicleNumber, &jc.JobNumber, &jc.Status, &jc.Assignee,
			&jc.Notes, &jc.LabourCharge, &jc.Discount, &jc.CreatedBy, &jc.CreatedAt, &jc.ClosedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job card: %w", err)
		}
		cards = append(cards, jc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service history: %w", err)
	}
	return cards, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.VehicleType, &c.VehicleNumber,
		&c.CreditLimit, &c.Balance, &c.LastServiceDate, &c.NextServiceDate, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCustomers(rows pgx.Rows) ([]domain.Customer, error) {
	customers := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}
