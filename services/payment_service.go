package services

import (
	"context"
	"time"

	"food-order/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, payment *models.Payment) error
	ListByUser(ctx context.Context, userID, page, limit int) ([]models.Payment, int, error)
}

// PaymentService keeps the history of payment attempts, declined ones included.
type PaymentService struct {
	payments PaymentStore
	now      func() time.Time
}

func NewPaymentService(payments PaymentStore) *PaymentService {
	return &PaymentService{payments: payments, now: time.Now}
}

// Begin records a pending attempt before the gateway is called.
func (s *PaymentService) Begin(ctx context.Context, userID int, amount decimal.Decimal, method string) (*models.Payment, error) {
	now := s.now().UTC()
	payment := &models.Payment{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        models.PaymentRecordPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, models.PersistenceError(err, "failed to record payment")
	}
	return payment, nil
}

// Finish moves a pending attempt to Success or Failed. A gateway error
// counts as Failed.
func (s *PaymentService) Finish(ctx context.Context, payment *models.Payment, outcome models.PaymentOutcome, gatewayErr error) error {
	payment.Status = models.PaymentRecordFailed
	if gatewayErr == nil && outcome.Succeeded() {
		payment.Status = models.PaymentRecordSuccess
		payment.OrderNumber = outcome.OrderNumber
	}
	payment.UpdatedAt = s.now().UTC()

	if err := s.payments.UpdateStatus(ctx, payment); err != nil {
		return models.PersistenceError(err, "failed to update payment")
	}
	return nil
}

func (s *PaymentService) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Payment, models.PaginationMeta, error) {
	page, limit = normalizePage(page, limit)

	payments, total, err := s.payments.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, models.PaginationMeta{}, models.PersistenceError(err, "failed to load payments")
	}
	return payments, paginationMeta(page, limit, total), nil
}
