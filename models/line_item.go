package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers ({"price": 14.99}), matching the persisted cart shape.
	decimal.MarshalJSONWithoutQuotes = true
}

// CatalogItem is a purchasable menu entry as served by a store.
type CatalogItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// LineItem is one catalog item in the cart together with its quantity and
// the store it was added from. UnitPrice is snapshotted when first added.
type LineItem struct {
	ItemID    string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	StoreID   string          `json:"storeId"`
	StoreName string          `json:"storeName"`
	ImageRef  string          `json:"image"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderTotals is derived from the ledger on demand and never stored on its own.
type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

type CartSnapshot struct {
	Items     []LineItem  `json:"items"`
	ItemCount int         `json:"itemCount"`
	Totals    OrderTotals `json:"totals"`
}
