package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemJSONShape(t *testing.T) {
	item := LineItem{
		ItemID:    "101",
		Name:      "Margherita Pizza",
		UnitPrice: decimal.RequireFromString("14.99"),
		Quantity:  2,
		StoreID:   "1",
		StoreName: "Taste of Italy",
		ImageRef:  "https://example.com/pizza.jpg",
	}

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 7)
	assert.Equal(t, "101", fields["id"])
	assert.Equal(t, 14.99, fields["price"])
	assert.Equal(t, float64(2), fields["quantity"])
	assert.Equal(t, "1", fields["storeId"])
	assert.Equal(t, "Taste of Italy", fields["storeName"])
	assert.Equal(t, "https://example.com/pizza.jpg", fields["image"])
}

func TestLineItemAcceptsQuotedPrice(t *testing.T) {
	var item LineItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","price":"5.50","quantity":1}`), &item))
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("5.5")))
}

func TestLineTotal(t *testing.T) {
	item := LineItem{UnitPrice: decimal.RequireFromString("12.99"), Quantity: 3}
	assert.Equal(t, "38.97", item.LineTotal().StringFixed(2))
}
