package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidAssetType(t *testing.T) {
	assert.True(t, ValidAssetType(TypeStock))
	assert.True(t, ValidAssetType(TypeMutualFund))
	assert.True(t, ValidAssetType(TypeBond))

	assert.False(t, ValidAssetType("crypto"))
	assert.False(t, ValidAssetType(""))
	assert.False(t, ValidAssetType("Stock"))
}

func TestHoldingCostBasis(t *testing.T) {
	h := &Holding{
		Quantity:    decimal.RequireFromString("7"),
		AverageCost: decimal.RequireFromString("12.5"),
	}
	assert.True(t, h.CostBasis().Equal(decimal.RequireFromString("87.5")))
}
