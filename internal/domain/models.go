package domain

import (
	"fmt"
	"time"
)

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SellPrice      float64   `json:"sell_price"`
	Vendor         *string   `json:"vendor,omitempty"`
	RackID         *string   `json:"rack_id,omitempty"`
	AdditionalInfo *string   `json:"additional_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductWithStock is a Product annotated with values derived from the
// inventory ledger. Quantity and PurchasePrice are never stored.
type ProductWithStock struct {
	Product
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

type TransactionType string

const (
	TypePurchase      TransactionType = "PURCHASE"
	TypeSale          TransactionType = "SALE"
	TypeAdjustmentIn  TransactionType = "ADJUSTMENT_IN"
	TypeAdjustmentOut TransactionType = "ADJUSTMENT_OUT"
)

// Inbound reports whether the type increases stock.
func (t TransactionType) Inbound() bool {
	return t == TypePurchase || t == TypeAdjustmentIn
}

func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchase, TypeSale, TypeAdjustmentIn, TypeAdjustmentOut:
		return true
	}
	return false
}

// InventoryTransaction is one row of the append-only stock ledger. Rows are
// never updated or deleted; corrections are made with reversing entries.
type InventoryTransaction struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Type            TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	UnitCost        float64         `json:"unit_cost"`
	UnitPrice       float64         `json:"unit_price"`
	TotalAmount     float64         `json:"total_amount"`
	Vendor          *string         `json:"vendor,omitempty"`
	ReferenceNo     *string         `json:"reference_no,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedBy       *string         `json:"created_by,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
}

type Customer struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           *string    `json:"email,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	Address         *string    `json:"address,omitempty"`
	VehicleType     *string    `json:"vehicle_type,omitempty"`
	VehicleNumber   *string    `json:"vehicle_number,omitempty"`
	CreditLimit     float64    `json:"credit_limit"`
	Balance         float64    `json:"balance"`
	LastServiceDate *time.Time `json:"last_service_date,omitempty"`
	NextServiceDate *time.Time `json:"next_service_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CallLog struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Note       string    `json:"note"`
	CreatedBy  *string   `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type JobCardTask struct {
	ID          string     `json:"id"`
	JobCardID   string     `json:"job_card_id"`
	Description string     `json:"task_description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type JobCardStockItem struct {
	ID          string    `json:"id"`
	JobCardID   string    `json:"job_card_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ProductName string    `json:"product_name,omitempty"`
	RackID      *string   `json:"rack_id,omitempty"`
}

type JobCard struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	VehicleNumber string        `json:"vehicle_number"`
	JobNumber     string        `json:"job_number"`
	Status        JobCardStatus `json:"status"`
	Assignee      *string       `json:"assignee,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	LabourCharge  float64       `json:"labour_charge"`
	Discount      float64       `json:"discount"`
	CreatedBy     *string       `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ClosedAt      *time.Time    `json:"closed_at,omitempty"`

	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`

	Tasks      []JobCardTask      `json:"tasks,omitempty"`
	StockItems []JobCardStockItem `json:"stock_items,omitempty"`
}

// NewJobNumber returns the human job number for a card opened at the given
// time, e.g. JC-1735689600000.
func NewJobNumber(at time.Time) string {
	return fmt.Sprintf("JC-%d", at.UnixMilli())
}

type Sale struct {
	ID            string     `json:"id"`
	CustomerID    *string    `json:"customer_id,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	Discount      float64    `json:"discount"`
	Tax           float64    `json:"tax"`
	PaymentMethod string     `json:"payment_method"`
	CreatedBy     *string    `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	Items         []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID          string  `json:"id"`
	SaleID      string  `json:"sale_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	ProductName string  `json:"product_name,omitempty"`
}

type BillStatus string

const (
	BillFinalized BillStatus = "finalized"
	BillCancelled BillStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type BillItemType string

const (
	BillItemService BillItemType = "service"
	BillItemPart    BillItemType = "part"
)

// BillItem is one line of a frozen bill snapshot. Service lines document the
// work done and carry no amount; the labour charge covers them.
type BillItem struct {
	Type        BillItemType `json:"type"`
	Description string       `json:"description"`
	Quantity    int          `json:"quantity"`
	Rate        float64      `json:"rate"`
	Amount      float64      `json:"amount"`
}

// CustomerSnapshot is the customer as billed. It is copied into the bill at
// generation time and stays fixed when the live customer record changes.
type CustomerSnapshot struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

// Bill is a value, not a view: CustomerData, Items, Subtotal and Total are
// written once and never rewritten. Only Status, PaymentStatus and Notes may
// change afterwards.
type Bill struct {
	ID            string           `json:"id"`
	BillNumber    string           `json:"bill_number"`
	JobCardID     *string          `json:"job_card_id,omitempty"`
	SaleID        *string          `json:"sale_id,omitempty"`
	BillDate      time.Time        `json:"bill_date"`
	CustomerData  CustomerSnapshot `json:"customer_data"`
	Items         []BillItem       `json:"bill_items"`
	LabourCharge  float64          `json:"labour_charge"`
	Discount      float64          `json:"discount"`
	Subtotal      float64          `json:"subtotal"`
	Total         float64          `json:"total"`
	Status        BillStatus       `json:"status"`
	PaymentStatus PaymentStatus    `json:"payment_status"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
