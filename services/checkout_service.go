package services

import (
	"context"
	"sync"
	"time"

	"food-order/logger"
	"food-order/models"
	"food-order/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OrderConfirmationSender interface {
	SendOrderConfirmationEmail(ctx context.Context, toEmail string, order models.Order) error
}

type CheckoutService struct {
	ledger      *CartLedger
	gateway     PaymentGateway
	orders      *OrderService
	payments    *PaymentService
	mailer      OrderConfirmationSender
	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
	log         *logger.Logger
	now         func() time.Time

	inFlight sync.Mutex
	mailWG   sync.WaitGroup
}

type CheckoutConfig struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// NewCheckoutService wires the checkout flow. payments and mailer may be nil.
func NewCheckoutService(
	ledger *CartLedger,
	gateway PaymentGateway,
	orders *OrderService,
	payments *PaymentService,
	mailer OrderConfirmationSender,
	cfg CheckoutConfig,
	log *logger.Logger,
) *CheckoutService {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutService{
		ledger:      ledger,
		gateway:     gateway,
		orders:      orders,
		payments:    payments,
		mailer:      mailer,
		taxRate:     cfg.TaxRate,
		deliveryFee: cfg.DeliveryFee,
		log:         log,
		now:         time.Now,
	}
}

func (s *CheckoutService) Totals() models.OrderTotals {
	return s.ledger.ComputeTotals(s.taxRate, s.deliveryFee)
}

func (s *CheckoutService) Snapshot() models.CartSnapshot {
	return s.ledger.Snapshot(s.taxRate, s.deliveryFee)
}

// Checkout charges the current cart. Charged rows leave the cart only after
// the gateway reports success; a declined payment leaves it untouched.
func (s *CheckoutService) Checkout(ctx context.Context, session models.Session, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if !s.inFlight.TryLock() {
		return nil, models.NewAppError(models.CodeConflict, "a checkout is already in progress")
	}
	defer s.inFlight.Unlock()

	snapshot := s.ledger.Snapshot(s.taxRate, s.deliveryFee)
	if len(snapshot.Items) == 0 {
		return nil, models.ValidationError("cart is empty")
	}

	switch req.PaymentMethod {
	case models.PaymentMethodCreditCard:
		fields, err := utils.ValidatePaymentForm(req.Card)
		if err != nil {
			return nil, models.WrapAppError(models.CodeInternal, err, "failed to validate payment form")
		}
		if len(fields) > 0 {
			return nil, models.ValidationError("invalid payment details").WithDetails(fields)
		}
	case models.PaymentMethodPayPal, models.PaymentMethodApplePay:
	default:
		return nil, models.ValidationError("unsupported payment method")
	}

	payment := s.beginPayment(ctx, session.UserID, snapshot.Totals.Total, req.PaymentMethod)
	outcome, err := s.gateway.AttemptPayment(ctx, snapshot.Totals.Total)
	s.finishPayment(ctx, payment, outcome, err)
	if err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		return nil, models.WrapAppError(models.CodeDependency, err, "payment could not be completed")
	}
	if !outcome.Succeeded() {
		s.log.Event(ctx, zerolog.InfoLevel).Str("total", snapshot.Totals.Total.StringFixed(2)).Msg("payment declined")
		return nil, models.PaymentDeclinedError("payment failed, please try again")
	}

	first := snapshot.Items[0]
	order := models.Order{
		ID:            uuid.New(),
		OrderNumber:   outcome.OrderNumber,
		UserID:        session.UserID,
		StoreID:       first.StoreID,
		StoreName:     first.StoreName,
		Items:         snapshot.Items,
		Totals:        snapshot.Totals,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusProcessing,
		CreatedAt:     s.now().UTC(),
	}

	if s.orders != nil {
		if err := s.orders.Save(ctx, &order); err != nil {
			s.log.Error(ctx, "failed to record order "+order.OrderNumber, err)
		}
	}

	if err := s.ledger.RemoveCharged(ctx, snapshot.Items); err != nil {
		s.log.Error(ctx, "failed to clear charged items after checkout", err)
	}

	s.sendConfirmation(ctx, session.Email, order)

	return &models.CheckoutResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Totals:      order.Totals,
	}, nil
}

func (s *CheckoutService) beginPayment(ctx context.Context, userID int, amount decimal.Decimal, method string) *models.Payment {
	if s.payments == nil {
		return nil
	}
	payment, err := s.payments.Begin(ctx, userID, amount, method)
	if err != nil {
		s.log.Error(ctx, "failed to record payment attempt", err)
		return nil
	}
	return payment
}

// finishPayment records the outcome even when the caller has gone away.
func (s *CheckoutService) finishPayment(ctx context.Context, payment *models.Payment, outcome models.PaymentOutcome, gatewayErr error) {
	if payment == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.payments.Finish(ctx, payment, outcome, gatewayErr); err != nil {
		s.log.Error(ctx, "failed to update payment "+payment.ID.String(), err)
	}
}

func (s *CheckoutService) sendConfirmation(ctx context.Context, email string, order models.Order) {
	if s.mailer == nil || email == "" {
		return
	}

	mailCtx := context.WithoutCancel(ctx)
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		if err := s.mailer.SendOrderConfirmationEmail(mailCtx, email, order); err != nil {
			s.log.Warn(mailCtx, "failed to send order confirmation", err)
		}
	}()
}

// Wait blocks until background confirmation emails have been handed off.
func (s *CheckoutService) Wait() {
	s.mailWG.Wait()
}
