package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/pntme/Retail-management/internal/auth"
)

func NewRouter(handler *Handler, authManager *auth.Manager, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)
	r.Post("/api/v1/auth/login", handler.Login)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(authManager))

		r.Get("/products", handler.ListProducts)
		r.Get("/products/low-stock", handler.LowStockProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/products/{id}/stock", handler.ProductStock)
		r.Post("/products", handler.CreateProduct)
		r.Put("/products/{id}", handler.UpdateProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)
		r.Post("/products/import-excel", handler.ImportProductsExcel)

		r.Get("/inventory/transactions", handler.ListTransactions)
		r.Post("/inventory/transactions", handler.RecordMovement)

		r.Get("/customers", handler.ListCustomers)
		r.Get("/customers/due-for-service", handler.CustomersDueForService)
		r.Get("/customers/{id}", handler.GetCustomer)
		r.Post("/customers", handler.CreateCustomer)
		r.Put("/customers/{id}", handler.UpdateCustomer)
		r.Delete("/customers/{id}", handler.DeleteCustomer)
		r.Get("/customers/{id}/call-logs", handler.ListCallLogs)
		r.Post("/customers/{id}/call-logs", handler.AddCallLog)
		r.Get("/customers/{id}/service-history", handler.ServiceHistory)

		r.Get("/job-cards", handler.ListJobCards)
		r.Get("/job-cards/{id}", handler.GetJobCard)
		r.Post("/job-cards", handler.CreateJobCard)
		r.Put("/job-cards/{id}", handler.UpdateJobCard)
		r.Patch("/job-cards/{id}/status", handler.TransitionJobCard)
		r.Post("/job-cards/{id}/complete", handler.CompleteJobCard)
		r.Post("/job-cards/{id}/reject", handler.RejectJobCard)
		r.Post("/job-cards/{id}/tasks", handler.AddTask)
		r.Patch("/job-cards/{id}/tasks/{taskID}", handler.UpdateTaskStatus)
		r.Delete("/job-cards/{id}/tasks/{taskID}", handler.RemoveTask)
		r.Post("/job-cards/{id}/stock-items", handler.AddStockItem)
		r.Delete("/job-cards/{id}/stock-items/{itemID}", handler.RemoveStockItem)

		r.Get("/sales", handler.ListSales)
		r.Get("/sales/{id}", handler.GetSale)
		r.Post("/sales", handler.CreateSale)

		r.Get("/bills", handler.ListBills)
		r.Get("/bills/{id}", handler.GetBill)
		r.Patch("/bills/{id}/pay", handler.MarkBillPaid)
		r.Patch("/bills/{id}/cancel", handler.CancelBill)

		r.Get("/reports/profit-loss", handler.ProfitLoss)
		r.Get("/reports/profit-loss/excel", handler.ProfitLossExcel)
		r.Get("/reports/dashboard", handler.DashboardStats)
	})

	return r
}
