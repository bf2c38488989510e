// Package service is the thin application facade: input trimming and
// validation, then delegation to the repository.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pntme/Retail-management/internal/auth"
	"github.com/pntme/Retail-management/internal/domain"
	"github.com/pntme/Retail-management/internal/repository"
)

type Service struct {
	repo     *repository.Repository
	auth     *auth.Manager
	offDay   time.Weekday
	validate *validator.Validate
}

func New(repo *repository.Repository, authManager *auth.Manager, offDay time.Weekday) *Service {
	return &Service{
		repo:     repo,
		auth:     authManager,
		offDay:   offDay,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) check(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return domain.Validationf("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}

// --- auth ---

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	user, hash, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, domain.Validationf("invalid credentials")
	}
	if !auth.CheckPassword(hash, input.Password) {
		return nil, domain.Validationf("invalid credentials")
	}
	token, err := s.auth.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.EnsureDefaultAdmin(ctx, username, hash)
}

// --- products ---

type ProductInput struct {
	Name           string  `json:"name" validate:"required"`
	SellPrice      float64 `json:"sell_price" validate:"gte=0"`
	Vendor         *string `json:"vendor"`
	RackID         *string `json:"rack_id"`
	AdditionalInfo *string `json:"additional_info"`
}

func (s *Service) ListProducts(ctx context.Context, search string) ([]domain.ProductWithStock, error) {
	return s.repo.ListProducts(ctx, search)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.ProductWithStock, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.CreateProduct(ctx, repository.ProductCreateInput{
		Name:           input.Name,
		SellPrice:      input.SellPrice,
		Vendor:         normalizeNullable(input.Vendor),
		RackID:         normalizeNullable(input.RackID),
		AdditionalInfo: normalizeNullable(input.AdditionalInfo),
	})
}

func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateProduct(ctx, id, repository.ProductCreateInput{
		Name:           input.Name,
		SellPrice:      input.SellPrice,
		Vendor:         normalizeNullable(input.Vendor),
		RackID:         normalizeNullable(input.RackID),
		AdditionalInfo: normalizeNullable(input.AdditionalInfo),
	})
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) LowStockProducts(ctx context.Context, threshold int) ([]domain.ProductWithStock, error) {
	return s.repo.LowStockProducts(ctx, threshold)
}

// --- inventory ledger ---

type MovementInput struct {
	ProductID   string  `json:"product_id" validate:"required"`
	Type        string  `json:"transaction_type" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Vendor      *string `json:"vendor"`
	ReferenceNo *string `json:"reference_no"`
	Notes       *string `json:"notes"`
	CreatedBy   *string `json:"created_by"`
}

func (s *Service) RecordMovement(ctx context.Context, input MovementInput) (*domain.InventoryTransaction, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.RecordMovement(ctx, repository.RecordMovementInput{
		ProductID:   input.ProductID,
		Type:        domain.TransactionType(strings.ToUpper(strings.TrimSpace(input.Type))),
		Quantity:    input.Quantity,
		UnitCost:    input.UnitCost,
		UnitPrice:   input.UnitPrice,
		Vendor:      normalizeNullable(input.Vendor),
		ReferenceNo: normalizeNullable(input.ReferenceNo),
		Notes:       normalizeNullable(input.Notes),
		CreatedBy:   normalizeNullable(input.CreatedBy),
	})
}

func (s *Service) ListTransactions(ctx context.Context, productID string, limit int) ([]domain.InventoryTransaction, error) {
	return s.repo.ListTransactions(ctx, productID, limit)
}

func (s *Service) CurrentStock(ctx context.Context, productID string) (int, error) {
	return s.repo.CurrentStock(ctx, productID)
}

func (s *Service) AverageCost(ctx context.Context, productID string) (float64, error) {
	return s.repo.AverageCost(ctx, productID)
}

// --- customers ---

type CustomerInput struct {
	Name          string  `json:"name" validate:"required"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"required"`
	Address       *string `json:"address"`
	VehicleType   *string `json:"vehicle_type"`
	VehicleNumber *string `json:"vehicle_number"`
	CreditLimit   float64 `json:"credit_limit" validate:"gte=0"`
}

func (input CustomerInput) repoInput() repository.CustomerInput {
	return repository.CustomerInput{
		Name:          strings.TrimSpace(input.Name),
		Email:         normalizeNullable(input.Email),
		Phone:         normalizeNullable(input.Phone),
		Address:       normalizeNullable(input.Address),
		VehicleType:   normalizeNullable(input.VehicleType),
		VehicleNumber: normalizeNullable(input.VehicleNumber),
		CreditLimit:   input.CreditLimit,
	}
}

func (s *Service) ListCustomers(ctx context.Context, search string, limit int) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, search, limit)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomer(ctx, input.repoInput())
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateCustomer(ctx, id, input.repoInput())
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) ListCallLogs(ctx context.Context, customerID string) ([]domain.CallLog, error) {
	return s.repo.ListCallLogs(ctx, customerID)
}

func (s *Service) AddCallLog(ctx context.Context, customerID, note string, createdBy *string) (*domain.CallLog, error) {
	return s.repo.AddCallLog(ctx, customerID, strings.TrimSpace(note), normalizeNullable(createdBy))
}

func (s *Service) ServiceHistory(ctx context.Context, customerID string) ([]domain.JobCard, error) {
	return s.repo.ServiceHistory(ctx, customerID)
}

func (s *Service) CustomersDueForService(ctx context.Context, limit int) ([]domain.Customer, error) {
	return s.repo.CustomersDueForService(ctx, limit)
}

// --- job cards ---

type JobCardCreateInput struct {
	CustomerID    string   `json:"customer_id" validate:"required"`
	VehicleNumber string   `json:"vehicle_number" validate:"required"`
	Assignee      *string  `json:"assignee"`
	Notes         *string  `json:"notes"`
	Tasks         []string `json:"tasks" validate:"required,min=1,dive,required"`
	CreatedBy     *string  `json:"created_by"`
}

func (s *Service) CreateJobCard(ctx context.Context, input JobCardCreateInput) (*domain.JobCard, error) {
	input.VehicleNumber = strings.TrimSpace(input.VehicleNumber)
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.CreateJobCard(ctx, repository.JobCardCreateInput{
		CustomerID:    input.CustomerID,
		VehicleNumber: input.VehicleNumber,
		Assignee:      normalizeNullable(input.Assignee),
		Notes:         normalizeNullable(input.Notes),
		Tasks:         input.Tasks,
		CreatedBy:     normalizeNullable(input.CreatedBy),
	})
}

func (s *Service) ListJobCards(ctx context.Context, filter repository.JobCardFilter) ([]domain.JobCard, error) {
	return s.repo.ListJobCards(ctx, filter)
}

func (s *Service) GetJobCard(ctx context.Context, id string) (*domain.JobCard, error) {
	return s.repo.GetJobCard(ctx, id)
}

type JobCardUpdateInput struct {
	Assignee     *string `json:"assignee"`
	Notes        *string `json:"notes"`
	LabourCharge float64 `json:"labour_charge" validate:"gte=0"`
	Discount     float64 `json:"discount" validate:"gte=0"`
}

func (s *Service) UpdateJobCard(ctx context.Context, id string, input JobCardUpdateInput) (*domain.JobCard, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateJobCard(ctx, id, repository.JobCardUpdateInput{
		Assignee:     normalizeNullable(input.Assignee),
		Notes:        normalizeNullable(input.Notes),
		LabourCharge: input.LabourCharge,
		Discount:     input.Discount,
	})
}

func (s *Service) TransitionJobCard(ctx context.Context, id string, next domain.JobCardStatus) (*domain.JobCard, error) {
	return s.repo.TransitionJobCard(ctx, id, next)
}

func (s *Service) RejectJobCard(ctx context.Context, id, reason string) (*domain.JobCard, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}
	return s.repo.RejectJobCard(ctx, id, reason)
}

type JobCardCompleteInput struct {
	LabourCharge    *float64   `json:"labour_charge" validate:"omitempty,gte=0"`
	Discount        *float64   `json:"discount" validate:"omitempty,gte=0"`
	LastServiceDate *time.Time `json:"last_service_date"`
	NextServiceDate *time.Time `json:"next_service_date"`
}

func (s *Service) CompleteJobCard(ctx context.Context, id string, input JobCardCompleteInput) (*domain.JobCard, *domain.Bill, error) {
	if err := s.check(input); err != nil {
		return nil, nil, err
	}
	return s.repo.CompleteJobCard(ctx, id, repository.JobCardCompleteInput{
		LabourCharge:    input.LabourCharge,
		Discount:        input.Discount,
		LastServiceDate: input.LastServiceDate,
		NextServiceDate: input.NextServiceDate,
		OffDay:          s.offDay,
	})
}

func (s *Service) AddTask(ctx context.Context, jobCardID, description string) (*domain.JobCardTask, error) {
	return s.repo.AddTask(ctx, jobCardID, strings.TrimSpace(description))
}

func (s *Service) UpdateTaskStatus(ctx context.Context, jobCardID, taskID string, status domain.TaskStatus) error {
	return s.repo.UpdateTaskStatus(ctx, jobCardID, taskID, status)
}

func (s *Service) RemoveTask(ctx context.Context, jobCardID, taskID string) error {
	return s.repo.RemoveTask(ctx, jobCardID, taskID)
}

type StockItemInput struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"gt=0"`
	UnitPrice *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	Notes     *string  `json:"notes"`
	CreatedBy *string  `json:"created_by"`
}

func (s *Service) AddStockItem(ctx context.Context, jobCardID string, input StockItemInput) (*domain.JobCardStockItem, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	return s.repo.AddStockItem(ctx, jobCardID, repository.StockItemInput{
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Notes:     normalizeNullable(input.Notes),
		CreatedBy: normalizeNullable(input.CreatedBy),
	})
}

func (s *Service) RemoveStockItem(ctx context.Context, jobCardID, itemID string, createdBy *string) error {
	return s.repo.RemoveStockItem(ctx, jobCardID, itemID, normalizeNullable(createdBy))
}

// --- sales ---

type SaleItemInput struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"gt=0"`
	UnitPrice *float64 `json:"unit_price" validate:"omitempty,gte=0"`
}

type SaleCreateInput struct {
	CustomerID    *string         `json:"customer_id"`
	Items         []SaleItemInput `json:"items" validate:"required,min=1,dive"`
	Discount      float64         `json:"discount" validate:"gte=0"`
	Tax           float64         `json:"tax" validate:"gte=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card credit upi"`
	CreatedBy     *string         `json:"created_by"`
}

func (s *Service) CreateSale(ctx context.Context, input SaleCreateInput) (*domain.Sale, *domain.Bill, error) {
	if err := s.check(input); err != nil {
		return nil, nil, err
	}
	items := make([]repository.SaleItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, repository.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return s.repo.CreateSale(ctx, repository.SaleCreateInput{
		CustomerID:    normalizeNullable(input.CustomerID),
		Items:         items,
		Discount:      input.Discount,
		Tax:           input.Tax,
		PaymentMethod: input.PaymentMethod,
		CreatedBy:     normalizeNullable(input.CreatedBy),
	})
}

func (s *Service) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, from, to *time.Time, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, from, to, limit)
}

// --- bills ---

func (s *Service) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, filter repository.BillFilter) ([]domain.Bill, error) {
	return s.repo.ListBills(ctx, filter)
}

func (s *Service) MarkBillPaid(ctx context.Context, id string) (*domain.Bill, error) {
	return s.repo.MarkBillPaid(ctx, id)
}

func (s *Service) CancelBill(ctx context.Context, id string) (*domain.Bill, error) {
	return s.repo.CancelBill(ctx, id)
}

// --- reports ---

func (s *Service) ProfitLoss(ctx context.Context, from, to time.Time) (*domain.ProfitLossReport, error) {
	if to.Before(from) {
		return nil, domain.Validationf("to_date is before from_date")
	}
	return s.repo.ProfitLoss(ctx, from, to)
}

func (s *Service) DashboardStats(ctx context.Context, lowStockThreshold int) (*repository.DashboardStats, error) {
	return s.repo.DashboardStats(ctx, lowStockThreshold)
}

func (s *Service) RecentSales(ctx context.Context, limit int) ([]domain.Bill, error) {
	return s.repo.RecentSales(ctx, limit)
}

func normalizeNullable(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
