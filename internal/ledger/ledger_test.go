package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pntme/Retail-management/internal/domain"
)

func tx(t domain.TransactionType, qty int, cost float64) domain.InventoryTransaction {
	return domain.InventoryTransaction{Type: t, Quantity: qty, UnitCost: cost}
}

func TestStock(t *testing.T) {
	assert.Equal(t, 0, Stock(nil))

	history := []domain.InventoryTransaction{
		tx(domain.TypePurchase, 10, 100),
		tx(domain.TypeSale, 3, 0),
		tx(domain.TypeAdjustmentIn, 2, 0),
		tx(domain.TypeAdjustmentOut, 1, 0),
	}
	assert.Equal(t, 8, Stock(history))
}

func TestStockOrderIndependent(t *testing.T) {
	forward := []domain.InventoryTransaction{
		tx(domain.TypePurchase, 5, 10),
		tx(domain.TypeSale, 2, 0),
		tx(domain.TypePurchase, 7, 12),
	}
	reversed := []domain.InventoryTransaction{forward[2], forward[1], forward[0]}
	assert.Equal(t, Stock(forward), Stock(reversed))
}

func TestStockCanGoNegative(t *testing.T) {
	history := []domain.InventoryTransaction{
		tx(domain.TypePurchase, 2, 50),
		tx(domain.TypeSale, 5, 0),
	}
	assert.Equal(t, -3, Stock(history))
}

func TestAverageCost(t *testing.T) {
	history := []domain.InventoryTransaction{
		tx(domain.TypePurchase, 10, 100),
		tx(domain.TypePurchase, 5, 130),
		tx(domain.TypeSale, 8, 0),
		tx(domain.TypeAdjustmentIn, 3, 999),
	}
	// (10*100 + 5*130) / 15; adjustments never count.
	assert.InDelta(t, 110.0, AverageCost(history), 1e-9)
}

func TestAverageCostNoPurchases(t *testing.T) {
	assert.Equal(t, 0.0, AverageCost(nil))

	history := []domain.InventoryTransaction{
		tx(domain.TypeSale, 4, 0),
		tx(domain.TypeAdjustmentIn, 2, 80),
	}
	assert.Equal(t, 0.0, AverageCost(history))
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, 500.0, TotalAmount(domain.TypePurchase, 5, 100, 150))
	assert.Equal(t, 750.0, TotalAmount(domain.TypeSale, 5, 100, 150))
	assert.Equal(t, 200.0, TotalAmount(domain.TypeAdjustmentIn, 2, 100, 150))
	assert.Equal(t, 300.0, TotalAmount(domain.TypeAdjustmentOut, 2, 100, 150))
}
