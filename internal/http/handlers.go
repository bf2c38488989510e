package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pntme/Retail-management/internal/domain"
	"github.com/pntme/Retail-management/internal/excel"
	"github.com/pntme/Retail-management/internal/repository"
	"github.com/pntme/Retail-management/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// --- auth ---

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	result, err := h.svc.Login(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- products ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) LowStockProducts(w http.ResponseWriter, r *http.Request) {
	threshold, err := parseOptionalInt(r.URL.Query().Get("threshold"), 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.LowStockProducts(r.Context(), threshold)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// --- inventory ledger ---

func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var input service.MovementInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := ClaimsFrom(r.Context()); claims != nil && input.CreatedBy == nil {
		input.CreatedBy = &claims.Username
	}
	tr, err := h.svc.RecordMovement(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListTransactions(r.Context(), query.Get("product_id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ProductStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stock, err := h.svc.CurrentStock(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	avgCost, err := h.svc.AverageCost(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id":     id,
		"quantity":       stock,
		"purchase_price": avgCost,
	})
}

// --- customers ---

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListCustomers(r.Context(), query.Get("search"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input service.CustomerInput
	if !decodeJSON(w, r, &input) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var input service.CustomerInput
	if !decodeJSON(w, r, &input) {
		return
	}
	customer, err := h.svc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) ListCallLogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListCallLogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) AddCallLog(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Note string `json:"note"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	var createdBy *string
	if claims := ClaimsFrom(r.Context()); claims != nil {
		createdBy = &claims.Username
	}
	log, err := h.svc.AddCallLog(r.Context(), chi.URLParam(r, "id"), input.Note, createdBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (h *Handler) ServiceHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ServiceHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) CustomersDueForService(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.CustomersDueForService(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// --- job cards ---

func (h *Handler) CreateJobCard(w http.ResponseWriter, r *http.Request) {
	var input service.JobCardCreateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := ClaimsFrom(r.Context()); claims != nil && input.CreatedBy == nil {
		input.CreatedBy = &claims.Username
	}
	jc, err := h.svc.CreateJobCard(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jc)
}

func (h *Handler) ListJobCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListJobCards(r.Context(), repository.JobCardFilter{
		Status:        query.Get("status"),
		VehicleNumber: query.Get("vehicle_number"),
		Search:        query.Get("search"),
		Limit:         limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetJobCard(w http.ResponseWriter, r *http.Request) {
	jc, err := h.svc.GetJobCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jc)
}

func (h *Handler) UpdateJobCard(w http.ResponseWriter, r *http.Request) {
	var input service.JobCardUpdateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	jc, err := h.svc.UpdateJobCard(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jc)
}

func (h *Handler) TransitionJobCard(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	jc, err := h.svc.TransitionJobCard(r.Context(), chi.URLParam(r, "id"),
		domain.JobCardStatus(strings.ToLower(strings.TrimSpace(input.Status))))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jc)
}

func (h *Handler) RejectJobCard(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	jc, err := h.svc.RejectJobCard(r.Context(), chi.URLParam(r, "id"), input.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jc)
}

func (h *Handler) CompleteJobCard(w http.ResponseWriter, r *http.Request) {
	var input service.JobCardCompleteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	jc, bill, err := h.svc.CompleteJobCard(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job_card": jc, "bill": bill})
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Description string `json:"task_description"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	task, err := h.svc.AddTask(r.Context(), chi.URLParam(r, "id"), input.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	err := h.svc.UpdateTaskStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"),
		domain.TaskStatus(strings.ToLower(strings.TrimSpace(input.Status))))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) AddStockItem(w http.ResponseWriter, r *http.Request) {
	var input service.StockItemInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := ClaimsFrom(r.Context()); claims != nil && input.CreatedBy == nil {
		input.CreatedBy = &claims.Username
	}
	item, err := h.svc.AddStockItem(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) RemoveStockItem(w http.ResponseWriter, r *http.Request) {
	var createdBy *string
	if claims := ClaimsFrom(r.Context()); claims != nil {
		createdBy = &claims.Username
	}
	err := h.svc.RemoveStockItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), createdBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- sales ---

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var input service.SaleCreateInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := ClaimsFrom(r.Context()); claims != nil && input.CreatedBy == nil {
		input.CreatedBy = &claims.Username
	}
	sale, bill, err := h.svc.CreateSale(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale": sale, "bill": bill})
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.svc.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListSales(r.Context(), from, to, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// --- bills ---

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListBills(r.Context(), repository.BillFilter{
		From:          from,
		To:            to,
		Status:        query.Get("status"),
		PaymentStatus: query.Get("payment_status"),
		Search:        query.Get("search"),
		Limit:         limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) MarkBillPaid(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.MarkBillPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) CancelBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.CancelBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// --- reports ---

func (h *Handler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeOrDefault(r.URL.Query().Get("from"), r.URL.Query().Get("to"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.ProfitLoss(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ProfitLossExcel(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeOrDefault(r.URL.Query().Get("from"), r.URL.Query().Get("to"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.ProfitLoss(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=profit-loss-%s-%s.xlsx", report.FromDate, report.ToDate))
	if err := excel.WriteProfitLoss(w, report); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	threshold, err := parseOptionalInt(r.URL.Query().Get("threshold"), 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.svc.DashboardStats(r.Context(), threshold)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recent, err := h.svc.RecentSales(r.Context(), 5)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "recent_sales": recent})
}

// --- excel import ---

func (h *Handler) ImportProductsExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	rows, err := excel.ParseProducts(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var createdBy *string
	if claims := ClaimsFrom(r.Context()); claims != nil {
		createdBy = &claims.Username
	}
	imported := 0
	for _, row := range rows {
		product, err := h.svc.CreateProduct(r.Context(), service.ProductInput{
			Name:      row.Name,
			SellPrice: row.SellPrice,
			Vendor:    row.Vendor,
			RackID:    row.RackID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if row.OpeningQuantity > 0 {
			if _, err := h.svc.RecordMovement(r.Context(), service.MovementInput{
				ProductID: product.ID,
				Type:      string(domain.TypePurchase),
				Quantity:  row.OpeningQuantity,
				UnitCost:  row.OpeningUnitCost,
				CreatedBy: createdBy,
			}); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		imported++
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeDomainError maps the error taxonomy to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var notFound *domain.NotFoundError
	var conflict *domain.ConflictError
	var computation *domain.ComputationError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Message)
	case errors.As(err, &computation):
		writeError(w, http.StatusInternalServerError, computation.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parseOptionalInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return value, nil
}

const dateLayout = "2006-01-02"

func parseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := strings.TrimSpace(fromRaw); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q", raw)
		}
		from = &t
	}
	if raw := strings.TrimSpace(toRaw); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q", raw)
		}
		// Inclusive day range.
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

// dateRangeOrDefault fills in missing report bounds: from defaults to the
// first day of the current month, to defaults to the end of today.
func dateRangeOrDefault(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	from, to, err := parseDateRange(fromRaw, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		from = &start
	}
	if to == nil {
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return *from, *to, nil
}
