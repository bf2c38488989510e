package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobCardTransitions(t *testing.T) {
	cases := []struct {
		from, to JobCardStatus
		allowed  bool
	}{
		{JobCardOpen, JobCardInProgress, true},
		{JobCardOpen, JobCardCompleted, true},
		{JobCardOpen, JobCardRejected, true},
		{JobCardInProgress, JobCardCompleted, true},
		{JobCardInProgress, JobCardRejected, true},
		{JobCardInProgress, JobCardOpen, false},
		{JobCardCompleted, JobCardOpen, false},
		{JobCardCompleted, JobCardInProgress, false},
		{JobCardCompleted, JobCardRejected, false},
		{JobCardRejected, JobCardOpen, false},
		{JobCardRejected, JobCardCompleted, false},
		{JobCardOpen, JobCardOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestJobCardTerminal(t *testing.T) {
	assert.False(t, JobCardOpen.Terminal())
	assert.False(t, JobCardInProgress.Terminal())
	assert.True(t, JobCardCompleted.Terminal())
	assert.True(t, JobCardRejected.Terminal())
}

func TestJobCardStatusValid(t *testing.T) {
	assert.True(t, JobCardOpen.Valid())
	assert.False(t, JobCardStatus("closed").Valid())
	assert.False(t, JobCardStatus("").Valid())
}

func TestTransactionTypeInbound(t *testing.T) {
	assert.True(t, TypePurchase.Inbound())
	assert.True(t, TypeAdjustmentIn.Inbound())
	assert.False(t, TypeSale.Inbound())
	assert.False(t, TypeAdjustmentOut.Inbound())
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, TypeSale.Valid())
	assert.False(t, TransactionType("RETURN").Valid())
}
