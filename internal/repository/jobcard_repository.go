package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/billing"
	"github.com/pntme/Retail-management/internal/domain"
)

type JobCardCreateInput struct {
	CustomerID    string
	VehicleNumber string
	Assignee      *string
	Notes         *string
	Tasks         []string
	CreatedBy     *string
}

type JobCardUpdateInput struct {
	Assignee     *string
	Notes        *string
	LabourCharge float64
	Discount     float64
}

type JobCardCompleteInput struct {
	LabourCharge    *float64
	Discount        *float64
	LastServiceDate *time.Time
	NextServiceDate *time.Time
	OffDay          time.Weekday
}

const jobCardColumns = `
	jc.id, jc.customer_id, jc.vehicle_number, jc.job_number, jc.status, jc.assignee,
	jc.notes, jc.labour_charge, jc.discount, jc.created_by, jc.created_at, jc.closed_at,
	c.name, c.phone, c.email
`

// CreateJobCard opens a job card for a vehicle. A vehicle can have only one
// active (open or in_progress) card at a time.
func (r *Repository) CreateJobCard(ctx context.Context, input JobCardCreateInput) (*domain.JobCard, error) {
	if len(input.Tasks) == 0 {
		return nil, domain.Validationf("job card needs at least one task")
	}
	var created *domain.JobCard
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var customerName string
		err := tx.QueryRow(ctx, "SELECT name FROM customers WHERE id = $1", input.CustomerID).Scan(&customerName)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.NotFound("customer")
			}
			return fmt.Errorf("load customer: %w", err)
		}

		var active bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM job_cards
				WHERE vehicle_number = $1 AND status IN ('open', 'in_progress')
			)
		`, input.VehicleNumber).Scan(&active)
		if err != nil {
			return fmt.Errorf("check active job cards: %w", err)
		}
		if active {
			return domain.Conflictf("vehicle %s already has an active job card", input.VehicleNumber)
		}

		jc := domain.JobCard{
			ID:            uuid.NewString(),
			CustomerID:    input.CustomerID,
			VehicleNumber: input.VehicleNumber,
			JobNumber:     domain.NewJobNumber(time.Now()),
			Status:        domain.JobCardOpen,
			Assignee:      input.Assignee,
			Notes:         input.Notes,
			CreatedBy:     input.CreatedBy,
			CustomerName:  &customerName,
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO job_cards (id, customer_id, vehicle_number, job_number, status, assignee, notes, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`, jc.ID, jc.CustomerID, jc.VehicleNumber, jc.JobNumber, jc.Status, jc.Assignee, jc.Notes, jc.CreatedBy)
		if err := row.Scan(&jc.CreatedAt); err != nil {
			return fmt.Errorf("insert job card: %w", err)
		}

		for _, description := range input.Tasks {
			task, err := insertTaskTx(ctx, tx, jc.ID, description)
			if err != nil {
				return err
			}
			jc.Tasks = append(jc.Tasks, *task)
		}
		created = &jc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type JobCardFilter struct {
	Status        string
	VehicleNumber string
	Search        string
	Limit         int
}

func (r *Repository) ListJobCards(ctx context.Context, filter JobCardFilter) ([]domain.JobCard, error) {
	limit := normalizeLimit(filter.Limit, 100, 500)
	query := "SELECT " + jobCardColumns + `
		FROM job_cards jc
		JOIN customers c ON c.id = jc.customer_id
		WHERE ($1 = '' OR jc.status = $1)
		  AND ($2 = '' OR jc.vehicle_number = $2)
		  AND ($3 = '' OR jc.job_number ILIKE '%' || $3 || '%'
			OR jc.vehicle_number ILIKE '%' || $3 || '%'
			OR c.name ILIKE '%' || $3 || '%')
		ORDER BY jc.created_at DESC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.Status, filter.VehicleNumber, strings.TrimSpace(filter.Search), limit)
	if err != nil {
		return nil, fmt.Errorf("list job cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.JobCard, 0)
	for rows.Next() {
		jc, err := scanJobCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job card: %w", err)
		}
		cards = append(cards, *jc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job cards: %w", err)
	}
	return cards, nil
}

func (r *Repository) GetJobCard(ctx context.Context, id string) (*domain.JobCard, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+jobCardColumns+`
		FROM job_cards jc
		JOIN customers c ON c.id = jc.customer_id
		WHERE jc.id = $1
	`, id)
	jc, err := scanJobCard(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.NotFound("job card")
		}
		return nil, fmt.Errorf("get job card %s: %w", id, err)
	}

	if jc.Tasks, err = r.jobCardTasks(ctx, id); err != nil {
		return nil, err
	}
	if jc.StockItems, err = r.jobCardStockItems(ctx, id); err != nil {
		return nil, err
	}
	return jc, nil
}

// UpdateJobCard edits the mutable fields of an active card. Terminal cards
// are frozen.
func (r *Repository) UpdateJobCard(ctx context.Context, id string, input JobCardUpdateInput) (*domain.JobCard, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE job_cards
		SET assignee = $2, notes = $3, labour_charge = $4, discount = $5
		WHERE id = $1 AND status IN ('open', 'in_progress')
	`, id, input.Assignee, input.Notes, input.LabourCharge, input.Discount)
	if err != nil {
		return nil, fmt.Errorf("update job card %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetJobCard(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.Conflictf("job card is closed")
	}
	return r.GetJobCard(ctx, id)
}

// TransitionJobCard moves a card to in_progress. Terminal states have their
// own paths: completion generates the bill, rejection records a reason.
func (r *Repository) TransitionJobCard(ctx context.Context, id string, next domain.JobCardStatus) (*domain.JobCard, error) {
	if !next.Valid() {
		return nil, domain.Validationf("unknown job card status %q", next)
	}
	if next == domain.JobCardCompleted {
		return nil, domain.Validationf("completion requires the complete operation")
	}
	if next == domain.JobCardRejected {
		return nil, domain.Validationf("rejection requires the reject operation")
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		current, err := jobCardStatusForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !current.CanTransition(next) {
			return domain.Conflictf("cannot move job card from %s to %s", current, next)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE job_cards SET status = $2 WHERE id = $1 AND status = $3",
			id, next, current); err != nil {
			return fmt.Errorf("transition job card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetJobCard(ctx, id)
}

// RejectJobCard closes the card without a bill, appending the rejection
// reason to its notes.
func (r *Repository) RejectJobCard(ctx context.Context, id, reason string) (*domain.JobCard, error) {
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		current, err := jobCardStatusForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !current.CanTransition(domain.JobCardRejected) {
			return domain.Conflictf("cannot reject job card in status %s", current)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE job_cards
			SET status = 'rejected',
			    notes = TRIM(BOTH E'\n' FROM COALESCE(notes, '') || E'\n' || 'Rejected: ' || $2),
			    closed_at = NOW()
			WHERE id = $1
		`, id, reason); err != nil {
			return fmt.Errorf("reject job card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetJobCard(ctx, id)
}

// CompleteJobCard closes the card, freezes a bill for it, refreshes the
// customer's service dates and purges reminder call logs, all in one
// transaction.
func (r *Repository) CompleteJobCard(ctx context.Context, id string, input JobCardCompleteInput) (*domain.JobCard, *domain.Bill, error) {
	var bill *domain.Bill
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var jc domain.JobCard
		row := tx.QueryRow(ctx, `
			SELECT id, customer_id, vehicle_number, job_number, status, labour_charge, discount
			FROM job_cards WHERE id = $1 FOR UPDATE
		`, id)
		err := row.Scan(&jc.ID, &jc.CustomerID, &jc.VehicleNumber, &jc.JobNumber,
			&jc.Status, &jc.LabourCharge, &jc.Discount)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.NotFound("job card")
			}
			return fmt.Errorf("load job card: %w", err)
		}
		if !jc.Status.CanTransition(domain.JobCardCompleted) {
			return domain.Conflictf("cannot complete job card in status %s", jc.Status)
		}

		if input.LabourCharge != nil {
			jc.LabourCharge = *input.LabourCharge
		}
		if input.Discount != nil {
			jc.Discount = *input.Discount
		}

		var customer domain.Customer
		crow := tx.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", jc.CustomerID)
		if err := crow.Scan(
			&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.Address,
			&customer.VehicleType, &customer.VehicleNumber, &customer.CreditLimit, &customer.Balance,
			&customer.LastServiceDate, &customer.NextServiceDate, &customer.CreatedAt,
		); err != nil {
			return fmt.Errorf("load customer: %w", err)
		}

		tasks, err := jobCardTasksTx(ctx, tx, id)
		if err != nil {
			return err
		}
		stockItems, err := jobCardStockItemsTx(ctx, tx, id)
		if err != nil {
			return err
		}

		completedAt := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE job_cards
			SET status = 'completed', labour_charge = $2, discount = $3, closed_at = $4
			WHERE id = $1
		`, id, jc.LabourCharge, jc.Discount, completedAt); err != nil {
			return fmt.Errorf("close job card: %w", err)
		}

		billNumber, err := nextJobCardBillNumberTx(ctx, tx, completedAt)
		if err != nil {
			return err
		}
		items := billing.JobCardItems(tasks, stockItems)
		subtotal, total := billing.Totals(items, jc.LabourCharge, jc.Discount)
		b := domain.Bill{
			ID:            uuid.NewString(),
			BillNumber:    billNumber,
			JobCardID:     &jc.ID,
			CustomerData:  billing.SnapshotCustomer(customer),
			Items:         items,
			LabourCharge:  jc.LabourCharge,
			Discount:      jc.Discount,
			Subtotal:      subtotal,
			Total:         total,
			Status:        domain.BillFinalized,
			PaymentStatus: domain.PaymentUnpaid,
		}
		if err := insertBillTx(ctx, tx, &b); err != nil {
			return err
		}

		last, next := domain.ServiceDates(completedAt, input.LastServiceDate, input.NextServiceDate, input.OffDay)
		if _, err := tx.Exec(ctx, `
			UPDATE customers SET last_service_date = $2, next_service_date = $3 WHERE id = $1
		`, jc.CustomerID, last, next); err != nil {
			return fmt.Errorf("update service dates: %w", err)
		}

		// Reminder call history belongs to the previous cycle.
		if _, err := tx.Exec(ctx, "DELETE FROM call_logs WHERE customer_id = $1", jc.CustomerID); err != nil {
			return fmt.Errorf("purge call logs: %w", err)
		}

		bill = &b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	jc, err := r.GetJobCard(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return jc, bill, nil
}

func (r *Repository) AddTask(ctx context.Context, jobCardID, description string) (*domain.JobCardTask, error) {
	var task *domain.JobCardTask
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireActiveJobCardTx(ctx, tx, jobCardID); err != nil {
			return err
		}
		t, err := insertTaskTx(ctx, tx, jobCardID, description)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *Repository) UpdateTaskStatus(ctx context.Context, jobCardID, taskID string, status domain.TaskStatus) error {
	if status != domain.TaskPending && status != domain.TaskCompleted {
		return domain.Validationf("unknown task status %q", status)
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireActiveJobCardTx(ctx, tx, jobCardID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"UPDATE job_card_tasks SET status = $3 WHERE id = $2 AND job_card_id = $1",
			jobCardID, taskID, status)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("task")
		}
		return nil
	})
}

func (r *Repository) RemoveTask(ctx context.Context, jobCardID, taskID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireActiveJobCardTx(ctx, tx, jobCardID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"DELETE FROM job_card_tasks WHERE id = $2 AND job_card_id = $1", jobCardID, taskID)
		if err != nil {
			return fmt.Errorf("remove task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("task")
		}
		return nil
	})
}

type StockItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice *float64
	Notes     *string
	CreatedBy *string
}

// AddStockItem attaches a part to the card and records the matching SALE row
// in the inventory ledger.
func (r *Repository) AddStockItem(ctx context.Context, jobCardID string, input StockItemInput) (*domain.JobCardStockItem, error) {
	if input.Quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}
	var item *domain.JobCardStockItem
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireActiveJobCardTx(ctx, tx, jobCardID); err != nil {
			return err
		}

		var productName string
		var sellPrice float64
		err := tx.QueryRow(ctx,
			"SELECT name, sell_price FROM products WHERE id = $1 FOR UPDATE",
			input.ProductID).Scan(&productName, &sellPrice)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.NotFound("product")
			}
			return fmt.Errorf("load product: %w", err)
		}

		unitPrice := sellPrice
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}
		avgCost, err := averageCostTx(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}

		it := domain.JobCardStockItem{
			ID:          uuid.NewString(),
			JobCardID:   jobCardID,
			ProductID:   input.ProductID,
			Quantity:    input.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  unitPrice * float64(input.Quantity),
			Notes:       input.Notes,
			ProductName: productName,
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO job_card_stock_items (id, job_card_id, product_id, quantity, unit_price, total_price, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, it.ID, it.JobCardID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.Notes)
		if err := row.Scan(&it.CreatedAt); err != nil {
			return fmt.Errorf("insert stock item: %w", err)
		}

		if _, err := recordMovementTx(ctx, tx, RecordMovementInput{
			ProductID:   input.ProductID,
			Type:        domain.TypeSale,
			Quantity:    input.Quantity,
			UnitCost:    avgCost,
			UnitPrice:   unitPrice,
			ReferenceNo: &jobCardID,
			CreatedBy:   input.CreatedBy,
		}); err != nil {
			return err
		}

		item = &it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveStockItem detaches a part from the card. The ledger is append-only,
// so the earlier SALE row stays and a reversing ADJUSTMENT_IN row is added.
func (r *Repository) RemoveStockItem(ctx context.Context, jobCardID, itemID string, createdBy *string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireActiveJobCardTx(ctx, tx, jobCardID); err != nil {
			return err
		}

		var productID string
		var quantity int
		err := tx.QueryRow(ctx, `
			SELECT product_id, quantity FROM job_card_stock_items
			WHERE id = $2 AND job_card_id = $1
		`, jobCardID, itemID).Scan(&productID, &quantity)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.NotFound("stock item")
			}
			return fmt.Errorf("load stock item: %w", err)
		}

		if _, err := tx.Exec(ctx,
			"DELETE FROM job_card_stock_items WHERE id = $2 AND job_card_id = $1",
			jobCardID, itemID); err != nil {
			return fmt.Errorf("delete stock item: %w", err)
		}

		notes := "stock item removed from job card"
		_, err = recordMovementTx(ctx, tx, RecordMovementInput{
			ProductID:   productID,
			Type:        domain.TypeAdjustmentIn,
			Quantity:    quantity,
			ReferenceNo: &jobCardID,
			Notes:       &notes,
			CreatedBy:   createdBy,
		})
		return err
	})
}

func insertTaskTx(ctx context.Context, tx pgx.Tx, jobCardID, description string) (*domain.JobCardTask, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.Validationf("task description is required")
	}
	t := domain.JobCardTask{
		ID:          uuid.NewString(),
		JobCardID:   jobCardID,
		Description: description,
		Status:      domain.TaskPending,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO job_card_tasks (id, job_card_id, task_description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, t.ID, t.JobCardID, t.Description, t.Status)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

func jobCardStatusForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (domain.JobCardStatus, error) {
	var status domain.JobCardStatus
	err := tx.QueryRow(ctx, "SELECT status FROM job_cards WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.NotFound("job card")
		}
		return "", fmt.Errorf("load job card status: %w", err)
	}
	return status, nil
}

func requireActiveJobCardTx(ctx context.Context, tx pgx.Tx, id string) error {
	status, err := jobCardStatusForUpdateTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if status.Terminal() {
		return domain.Conflictf("job card is closed")
	}
	return nil
}

func averageCostTx(ctx context.Context, tx pgx.Tx, productID string) (float64, error) {
	var avg float64
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity * unit_cost) / NULLIF(SUM(quantity), 0), 0)::double precision
		FROM inventory_transactions
		WHERE product_id = $1 AND transaction_type = 'PURCHASE'
	`, productID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("compute average cost: %w", err)
	}
	return avg, nil
}

func (r *Repository) jobCardTasks(ctx context.Context, jobCardID string) ([]domain.JobCardTask, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job_card_id, task_description, status, created_at
		FROM job_card_tasks WHERE job_card_id = $1 ORDER BY created_at
	`, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func jobCardTasksTx(ctx context.Context, tx pgx.Tx, jobCardID string) ([]domain.JobCardTask, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, job_card_id, task_description, status, created_at
		FROM job_card_tasks WHERE job_card_id = $1 ORDER BY created_at
	`, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows pgx.Rows) ([]domain.JobCardTask, error) {
	tasks := make([]domain.JobCardTask, 0)
	for rows.Next() {
		var t domain.JobCardTask
		if err := rows.Scan(&t.ID, &t.JobCardID, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

const stockItemQuery = `
	SELECT si.id, si.job_card_id, si.product_id, si.quantity, si.unit_price, si.total_price,
	       si.notes, si.created_at, p.name, p.rack_id
	FROM job_card_stock_items si
	JOIN products p ON p.id = si.product_id
	WHERE si.job_card_id = $1
	ORDER BY si.created_at
`

func (r *Repository) jobCardStockItems(ctx context.Context, jobCardID string) ([]domain.JobCardStockItem, error) {
	rows, err := r.pool.Query(ctx, stockItemQuery, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	return collectStockItems(rows)
}

func jobCardStockItemsTx(ctx context.Context, tx pgx.Tx, jobCardID string) ([]domain.JobCardStockItem, error) {
	rows, err := tx.Query(ctx, stockItemQuery, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	return collectStockItems(rows)
}

func collectStockItems(rows pgx.Rows) ([]domain.JobCardStockItem, error) {
	items := make([]domain.JobCardStockItem, 0)
	for rows.Next() {
		var it domain.JobCardStockItem
		if err := rows.Scan(
			&it.ID, &it.JobCardID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice,
			&it.Notes, &it.CreatedAt, &it.ProductName, &it.RackID,
		); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock items: %w", err)
	}
	return items, nil
}

func scanJobCard(row pgx.Row) (*domain.JobCard, error) {
	var jc domain.JobCard
	err := row.Scan(
		&jc.ID, &jc.CustomerID, &jc.VehicleNumber, &jc.JobNumber, &jc.Status, &jc.Assignee,
		&jc.Notes, &jc.LabourCharge, &jc.Discount, &jc.CreatedBy, &jc.CreatedAt, &jc.ClosedAt,
		&jc.CustomerName, &jc.CustomerPhone, &jc.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}
	return &jc, nil
}
