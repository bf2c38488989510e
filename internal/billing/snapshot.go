package billing

import "github.com/pntme/Retail-management/internal/domain"

// SnapshotCustomer copies the billing-relevant customer fields. The returned
// value has no tie to the live record.
func SnapshotCustomer(c domain.Customer) domain.CustomerSnapshot {
	snap := domain.CustomerSnapshot{
		ID:   c.ID,
		Name: c.Name,
	}
	if c.Phone != nil {
		snap.Phone = *c.Phone
	}
	if c.Email != nil {
		snap.Email = *c.Email
	}
	if c.Address != nil {
		snap.Address = *c.Address
	}
	if c.VehicleType != nil {
		snap.VehicleType = *c.VehicleType
	}
	if c.VehicleNumber != nil {
		snap.VehicleNumber = *c.VehicleNumber
	}
	return snap
}

// JobCardItems builds the line items for a job-card bill: one zero-priced
// service line per task (tasks document the work, the labour charge carries
// the money) and one part line per stock item.
func JobCardItems(tasks []domain.JobCardTask, stockItems []domain.JobCardStockItem) []domain.BillItem {
	items := make([]domain.BillItem, 0, len(tasks)+len(stockItems))
	for _, task := range tasks {
		items = append(items, domain.BillItem{
			Type:        domain.BillItemService,
			Description: task.Description,
			Quantity:    1,
		})
	}
	for _, stock := range stockItems {
		description := stock.ProductName
		if description == "" {
			description = stock.ProductID
		}
		items = append(items, domain.BillItem{
			Type:        domain.BillItemPart,
			Description: description,
			Quantity:    stock.Quantity,
			Rate:        stock.UnitPrice,
			Amount:      stock.TotalPrice,
		})
	}
	return items
}

// SaleItems builds the part lines for a direct-sale bill.
func SaleItems(saleItems []domain.SaleItem) []domain.BillItem {
	items := make([]domain.BillItem, 0, len(saleItems))
	for _, sale := range saleItems {
		description := sale.ProductName
		if description == "" {
			description = sale.ProductID
		}
		items = append(items, domain.BillItem{
			Type:        domain.BillItemPart,
			Description: description,
			Quantity:    sale.Quantity,
			Rate:        sale.UnitPrice,
			Amount:      sale.Subtotal,
		})
	}
	return items
}

// Totals computes the frozen amounts: subtotal is the part amounts plus the
// labour charge, total is the subtotal less the discount.
func Totals(items []domain.BillItem, labourCharge, discount float64) (subtotal, total float64) {
	for _, item := range items {
		subtotal += item.Amount
	}
	subtotal += labourCharge
	return subtotal, subtotal - discount
}
