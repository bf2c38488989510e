// Package ledger derives stock state from inventory transaction history.
// Quantities and costs are never stored on products; every read replays the
// relevant slice of the append-only ledger, so the ledger stays the single
// source of truth.
package ledger

import "github.com/pntme/Retail-management/internal/domain"

// Stock returns the signed quantity sum over the transactions: inbound types
// add, outbound types subtract. Order does not matter.
func Stock(transactions []domain.InventoryTransaction) int {
	total := 0
	for _, tx := range transactions {
		if tx.Type.Inbound() {
			total += tx.Quantity
		} else {
			total -= tx.Quantity
		}
	}
	return total
}

// AverageCost returns the quantity-weighted mean unit cost over PURCHASE
// entries. A history with no purchased quantity yields 0.
func AverageCost(transactions []domain.InventoryTransaction) float64 {
	var spend float64
	var qty int
	for _, tx := range transactions {
		if tx.Type != domain.TypePurchase {
			continue
		}
		spend += float64(tx.Quantity) * tx.UnitCost
		qty += tx.Quantity
	}
	if qty == 0 {
		return 0
	}
	return spend / float64(qty)
}

// TotalAmount computes the ledger row amount: quantity times unit cost for
// inbound movements, quantity times unit price for outbound ones.
func TotalAmount(t domain.TransactionType, quantity int, unitCost, unitPrice float64) float64 {
	if t.Inbound() {
		return float64(quantity) * unitCost
	}
	return float64(quantity) * unitPrice
}
