package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pntme/Retail-management/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestSnapshotCustomerCopiesFields(t *testing.T) {
	customer := domain.Customer{
		ID:            "c1",
		Name:          "Asha Verma",
		Phone:         strPtr("9876543210"),
		VehicleType:   strPtr("scooter"),
		VehicleNumber: strPtr("KA-01-AB-1234"),
	}
	snap := SnapshotCustomer(customer)
	assert.Equal(t, "c1", snap.ID)
	assert.Equal(t, "Asha Verma", snap.Name)
	assert.Equal(t, "9876543210", snap.Phone)
	assert.Equal(t, "KA-01-AB-1234", snap.VehicleNumber)
	assert.Empty(t, snap.Email)

	// The snapshot is a copy; the live record can change freely.
	customer.Name = "renamed"
	assert.Equal(t, "Asha Verma", snap.Name)
}

func TestJobCardItems(t *testing.T) {
	tasks := []domain.JobCardTask{
		{Description: "oil change"},
		{Description: "brake inspection"},
	}
	stockItems := []domain.JobCardStockItem{
		{ProductName: "engine oil", Quantity: 2, UnitPrice: 250, TotalPrice: 500},
	}

	items := JobCardItems(tasks, stockItems)
	require.Len(t, items, 3)

	assert.Equal(t, domain.BillItemService, items[0].Type)
	assert.Equal(t, "oil change", items[0].Description)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Zero(t, items[0].Amount)

	assert.Equal(t, domain.BillItemPart, items[2].Type)
	assert.Equal(t, "engine oil", items[2].Description)
	assert.Equal(t, 2, items[2].Quantity)
	assert.Equal(t, 250.0, items[2].Rate)
	assert.Equal(t, 500.0, items[2].Amount)
}

func TestJobCardItemsFallsBackToProductID(t *testing.T) {
	items := JobCardItems(nil, []domain.JobCardStockItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 10, TotalPrice: 10},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Description)
}

func TestTotals(t *testing.T) {
	items := JobCardItems(
		[]domain.JobCardTask{{Description: "general service"}},
		[]domain.JobCardStockItem{{ProductName: "engine oil", Quantity: 2, UnitPrice: 250, TotalPrice: 500}},
	)

	subtotal, total := Totals(items, 500, 50)
	assert.Equal(t, 1000.0, subtotal)
	assert.Equal(t, 950.0, total)
}

func TestTotalsNoDiscount(t *testing.T) {
	subtotal, total := Totals(nil, 300, 0)
	assert.Equal(t, 300.0, subtotal)
	assert.Equal(t, 300.0, total)
}

func TestSaleItems(t *testing.T) {
	items := SaleItems([]domain.SaleItem{
		{ProductName: "air filter", Quantity: 3, UnitPrice: 120, Subtotal: 360},
	})
	require.Len(t, items, 1)
	assert.Equal(t, domain.BillItemPart, items[0].Type)
	assert.Equal(t, 360.0, items[0].Amount)
}
