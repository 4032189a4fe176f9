package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-order/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, order_number, user_id, store_id, store_name, items,
			subtotal, tax, delivery_fee, total, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10::numeric, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.StoreID, order.StoreName, items,
		order.Totals.Subtotal.String(), order.Totals.Tax.String(),
		order.Totals.DeliveryFee.String(), order.Totals.Total.String(),
		order.PaymentMethod, string(order.Status), order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.OrderNumber, err)
	}
	return nil
}

const orderColumns = `id, order_number, user_id, store_id, store_name, items,
	subtotal::text, tax::text, delivery_fee::text, total::text, payment_method, status, created_at`

// ListByUser returns one page of the user's orders, newest first, plus the total count.
func (r *OrderRepository) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Order, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, userID int, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order                     models.Order
		items                     []byte
		status                    string
		subtotal, tax, fee, total string
	)
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &order.StoreID, &order.StoreName, &items,
		&subtotal, &tax, &fee, &total, &order.PaymentMethod, &status, &order.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.OrderNumber, err)
	}
	order.Status = models.OrderStatus(status)

	for _, f := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{subtotal, &order.Totals.Subtotal},
		{tax, &order.Totals.Tax},
		{fee, &order.Totals.DeliveryFee},
		{total, &order.Totals.Total},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("parse totals of order %s: %w", order.OrderNumber, err)
		}
		*f.dst = d
	}
	return &order, nil
}
