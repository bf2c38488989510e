package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pntme/Retail-management/internal/domain"
)

// Validation runs before any repository access, so a nil repository is safe
// for these paths.
func newValidationService() *Service {
	return New(nil, nil, time.Saturday)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateProductRequiresName(t *testing.T) {
	svc := newValidationService()
	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "  ", SellPrice: 100})
	assertValidation(t, err)
}

func TestCreateCustomerRequiresPhone(t *testing.T) {
	svc := newValidationService()
	_, err := svc.CreateCustomer(context.Background(), CustomerInput{Name: "Asha"})
	assertValidation(t, err)
}

func TestCreateJobCardRequiresTasks(t *testing.T) {
	svc := newValidationService()
	_, err := svc.CreateJobCard(context.Background(), JobCardCreateInput{
		CustomerID:    "c1",
		VehicleNumber: "KA-01-AB-1234",
	})
	assertValidation(t, err)
}

func TestCreateSaleRequiresItems(t *testing.T) {
	svc := newValidationService()
	_, _, err := svc.CreateSale(context.Background(), SaleCreateInput{PaymentMethod: "cash"})
	assertValidation(t, err)
}

func TestCreateSaleRejectsUnknownPaymentMethod(t *testing.T) {
	svc := newValidationService()
	_, _, err := svc.CreateSale(context.Background(), SaleCreateInput{
		Items:         []SaleItemInput{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: "barter",
	})
	assertValidation(t, err)
}

func TestRecordMovementRequiresPositiveQuantity(t *testing.T) {
	svc := newValidationService()
	_, err := svc.RecordMovement(context.Background(), MovementInput{
		ProductID: "p1",
		Type:      "PURCHASE",
		Quantity:  0,
	})
	assertValidation(t, err)
}

func TestRejectJobCardRequiresReason(t *testing.T) {
	svc := newValidationService()
	_, err := svc.RejectJobCard(context.Background(), "jc1", "   ")
	assertValidation(t, err)
}

func TestProfitLossRejectsInvertedRange(t *testing.T) {
	svc := newValidationService()
	from := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ProfitLoss(context.Background(), from, to)
	assertValidation(t, err)
}
