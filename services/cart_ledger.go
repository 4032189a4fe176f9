package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"food-order/logger"
	"food-order/models"
	"food-order/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartLedger is the ordered set of line items for the active session.
// Every mutation is written through to the key-value store under cart_items.
type CartLedger struct {
	mu    sync.Mutex
	items []models.LineItem
	dirty bool

	store repositories.KeyValueStore
	log   *logger.Logger
}

func NewCartLedger(store repositories.KeyValueStore, log *logger.Logger) *CartLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &CartLedger{
		items: []models.LineItem{},
		store: store,
		log:   log,
	}
}

// Load replaces the in-memory ledger with the persisted snapshot. A missing
// key yields an empty ledger; an unreadable payload leaves it empty and
// reports a persistence error.
func (l *CartLedger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = []models.LineItem{}
	l.dirty = false

	var stored []models.LineItem
	err := repositories.GetJSON(ctx, l.store, repositories.KeyCartItems, &stored)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return models.PersistenceError(err, "failed to load cart")
	}

	dropped := 0
	for _, item := range stored {
		if item.ItemID == "" || item.Quantity < 1 || l.indexOf(item.ItemID) >= 0 {
			dropped++
			continue
		}
		l.items = append(l.items, item)
	}
	if dropped > 0 {
		l.log.Event(ctx, zerolog.WarnLevel).Int("rows", dropped).Msg("dropped invalid cart rows on load")
	}
	return nil
}

// AddItem merges by item id or appends a new row with quantity 1 and the
// catalog price snapshotted. The returned line item reflects the in-memory
// state even when persisting fails.
func (l *CartLedger) AddItem(ctx context.Context, item models.CatalogItem, storeID, storeName string) (models.LineItem, error) {
	switch {
	case strings.TrimSpace(item.ID) == "":
		return models.LineItem{}, models.ValidationError("item id is required")
	case strings.TrimSpace(storeID) == "":
		return models.LineItem{}, models.ValidationError("store id is required")
	case strings.TrimSpace(storeName) == "":
		return models.LineItem{}, models.ValidationError("store name is required")
	case item.Price.IsNegative():
		return models.LineItem{}, models.ValidationError("item price must not be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var result models.LineItem
	if i := l.indexOf(item.ID); i >= 0 {
		l.items[i].Quantity++
		result = l.items[i]
	} else {
		result = models.LineItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  1,
			StoreID:   storeID,
			StoreName: storeName,
			ImageRef:  item.Image,
		}
		l.items = append(l.items, result)
	}

	return result, l.persist(ctx)
}

// UpdateQuantity sets the quantity of an existing row. Anything below 1
// removes the row; an unknown id is ignored.
func (l *CartLedger) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return l.RemoveItem(ctx, itemID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(itemID)
	if i < 0 {
		return nil
	}
	l.items[i].Quantity = quantity
	return l.persist(ctx)
}

func (l *CartLedger) RemoveItem(ctx context.Context, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(itemID)
	if i < 0 {
		return nil
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return l.persist(ctx)
}

func (l *CartLedger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = []models.LineItem{}
	return l.persist(ctx)
}

// RemoveCharged subtracts charged rows from the ledger. Rows added after the
// charge, and any quantity above what was charged, stay in the cart.
func (l *CartLedger) RemoveCharged(ctx context.Context, charged []models.LineItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, item := range charged {
		i := l.indexOf(item.ItemID)
		if i < 0 {
			continue
		}
		if remaining := l.items[i].Quantity - item.Quantity; remaining > 0 {
			l.items[i].Quantity = remaining
			continue
		}
		l.items = append(l.items[:i:i], l.items[i+1:]...)
	}
	return l.persist(ctx)
}

// Flush re-persists the snapshot if the last write did not make it.
func (l *CartLedger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}
	return l.persist(ctx)
}

// ComputeTotals derives subtotal, tax and total. Tax is rounded to cents.
func (l *CartLedger) ComputeTotals(taxRate, deliveryFee decimal.Decimal) models.OrderTotals {
	l.mu.Lock()
	defer l.mu.Unlock()

	return computeTotals(l.items, taxRate, deliveryFee)
}

func computeTotals(items []models.LineItem, taxRate, deliveryFee decimal.Decimal) models.OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(taxRate).Round(2)

	return models.OrderTotals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(tax).Add(deliveryFee),
	}
}

// ItemCount is the sum of quantities across rows.
func (l *CartLedger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, item := range l.items {
		count += item.Quantity
	}
	return count
}

func (l *CartLedger) IsInCart(itemID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.indexOf(itemID) >= 0
}

func (l *CartLedger) QuantityOf(itemID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(itemID); i >= 0 {
		return l.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the rows in insertion order.
func (l *CartLedger) Items() []models.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *CartLedger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items) == 0
}

// Snapshot returns rows, count and totals under one lock.
func (l *CartLedger) Snapshot(taxRate, deliveryFee decimal.Decimal) models.CartSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]models.LineItem, len(l.items))
	copy(items, l.items)

	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	return models.CartSnapshot{
		Items:     items,
		ItemCount: count,
		Totals:    computeTotals(items, taxRate, deliveryFee),
	}
}

func (l *CartLedger) indexOf(itemID string) int {
	for i := range l.items {
		if l.items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// persist must be called with mu held. Callers log the returned error.
func (l *CartLedger) persist(ctx context.Context) error {
	if err := repositories.SetJSON(ctx, l.store, repositories.KeyCartItems, l.items, 0); err != nil {
		l.dirty = true
		return models.PersistenceError(err, "failed to save cart")
	}
	l.dirty = false
	return nil
}
