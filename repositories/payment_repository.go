package repositories

import (
	"context"
	"errors"
	"fmt"

	"food-order/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $6)
	`
	_, err := r.db.Exec(ctx, query,
		payment.ID, payment.UserID, payment.Amount.String(),
		payment.PaymentMethod, string(payment.Status), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, order_number = NULLIF($3, ''), updated_at = $4
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, payment.ID, string(payment.Status), payment.OrderNumber, payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ListByUser returns one page of the user's payment attempts, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Payment, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := `
		SELECT id, user_id, amount::text, payment_method, status, COALESCE(order_number, ''), created_at, updated_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p      models.Payment
		amount string
		status string
	)
	if err := row.Scan(&p.ID, &p.UserID, &amount, &p.PaymentMethod, &status, &p.OrderNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount of payment %s: %w", p.ID, err)
	}
	p.Amount = d
	p.Status = models.PaymentRecordStatus(status)
	return &p, nil
}
