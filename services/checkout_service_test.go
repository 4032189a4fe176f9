package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"food-order/models"
	"food-order/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	outcome models.PaymentOutcome
	err     error
	calls   int
	charged decimal.Decimal
	// during runs while the payment is in flight.
	during func()
}

func (g *fakeGateway) AttemptPayment(_ context.Context, total decimal.Decimal) (models.PaymentOutcome, error) {
	g.calls++
	g.charged = total
	if g.during != nil {
		g.during()
	}
	return g.outcome, g.err
}

type memoryPaymentStore struct {
	mu       sync.Mutex
	payments []models.Payment
}

func (s *memoryPaymentStore) Create(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *payment)
	return nil
}

func (s *memoryPaymentStore) UpdateStatus(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == payment.ID {
			s.payments[i] = *payment
			return nil
		}
	}
	return repositories.ErrPaymentNotFound
}

func (s *memoryPaymentStore) ListByUser(_ context.Context, userID, page, limit int) ([]models.Payment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []models.Payment
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].UserID == userID {
			mine = append(mine, s.payments[i])
		}
	}
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Payment{}, len(mine), nil
	}
	return mine[start:min(start+limit, len(mine))], len(mine), nil
}

type memoryOrderStore struct {
	mu      sync.Mutex
	orders  []models.Order
	saveErr error
}

func (s *memoryOrderStore) Save(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *memoryOrderStore) ListByUser(_ context.Context, userID, page, limit int) ([]models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []models.Order
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID == userID {
			mine = append(mine, s.orders[i])
		}
	}
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Order{}, len(mine), nil
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], len(mine), nil
}

func (s *memoryOrderStore) GetByID(_ context.Context, userID int, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id && o.UserID == userID {
			order := o
			return &order, nil
		}
	}
	return nil, repositories.ErrOrderNotFound
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	otps    map[string]string
	sendErr error
}

func (m *fakeMailer) SendOrderConfirmationEmail(_ context.Context, to string, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+":"+order.OrderNumber)
	return m.sendErr
}

func (m *fakeMailer) SendOTPEmail(_ context.Context, to, otp string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.otps == nil {
		m.otps = map[string]string{}
	}
	m.otps[to] = otp
	return m.sendErr
}

type checkoutFixture struct {
	ledger   *CartLedger
	gateway  *fakeGateway
	orders   *memoryOrderStore
	payments *memoryPaymentStore
	mailer   *fakeMailer
	service  *CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		ledger:   NewCartLedger(repositories.NewMemoryStore(), nil),
		gateway:  &fakeGateway{outcome: models.PaymentOutcome{Status: models.PaymentSuccess, OrderNumber: "ORD-654321"}},
		orders:   &memoryOrderStore{},
		payments: &memoryPaymentStore{},
		mailer:   &fakeMailer{},
	}
	f.service = NewCheckoutService(f.ledger, f.gateway, NewOrderService(f.orders), NewPaymentService(f.payments), f.mailer,
		CheckoutConfig{TaxRate: testTaxRate, DeliveryFee: testDeliveryFee}, nil)
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.ledger.AddItem(ctx, catalogItem("A", "10.00"), "1", "Taste of Italy")
	require.NoError(t, err)
	_, err = f.ledger.AddItem(ctx, catalogItem("B", "5.00"), "1", "Taste of Italy")
	require.NoError(t, err)
	_, err = f.ledger.AddItem(ctx, catalogItem("B", "5.00"), "1", "Taste of Italy")
	require.NoError(t, err)
}

var (
	testSession = models.Session{UserID: 7, Email: "ann@example.com", Name: "Ann"}
	validCard   = models.PaymentInfo{
		CardNumber:     "4111 1111 1111 1111",
		ExpiryDate:     "12/99",
		CVV:            "123",
		CardholderName: "Ann Lee",
	}
)

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal})

	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Zero(t, f.gateway.calls)
}

func TestCheckoutInvalidCardNeverReachesGateway(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          models.PaymentInfo{CardNumber: "4111", ExpiryDate: "12/99", CVV: "123", CardholderName: "Ann Lee"},
	})

	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, map[string]string{"cardNumber": "Please enter a valid card number"}, appErr.Details)
	assert.Zero(t, f.gateway.calls)
	assert.Equal(t, 3, f.ledger.ItemCount())
}

func TestCheckoutUnsupportedMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{PaymentMethod: "bitcoin"})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestCheckoutDeclinedLeavesCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.gateway.outcome = models.PaymentOutcome{Status: models.PaymentFailure}
	before := f.ledger.Items()

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          validCard,
	})

	assert.True(t, models.HasCode(err, models.CodePaymentDeclined))
	assert.Equal(t, before, f.ledger.Items())
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutGatewayError(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.gateway.err = context.DeadlineExceeded

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodApplePay})

	assert.True(t, models.HasCode(err, models.CodeDependency))
	assert.False(t, f.ledger.IsEmpty())
}

func TestCheckoutSuccess(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)

	resp, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          validCard,
	})
	require.NoError(t, err)
	f.service.Wait()

	assert.Equal(t, "ORD-654321", resp.OrderNumber)
	assert.Equal(t, "27.99", resp.Totals.Total.String())
	assert.Equal(t, "27.99", f.gateway.charged.String())
	assert.True(t, f.ledger.IsEmpty())

	require.Len(t, f.orders.orders, 1)
	saved := f.orders.orders[0]
	assert.Equal(t, resp.OrderID, saved.ID)
	assert.Equal(t, 7, saved.UserID)
	assert.Equal(t, "1", saved.StoreID)
	assert.Equal(t, models.OrderStatusProcessing, saved.Status)
	assert.Len(t, saved.Items, 2)

	assert.Equal(t, []string{"ann@example.com:ORD-654321"}, f.mailer.sent)
}

func TestCheckoutSucceedsWhenHistoryWriteFails(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.orders.saveErr = errors.New("db down")

	resp, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal})
	require.NoError(t, err)
	f.service.Wait()

	assert.NotEmpty(t, resp.OrderNumber)
	assert.True(t, f.ledger.IsEmpty())
}

func TestCheckoutKeepsItemsAddedDuringPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.gateway.during = func() {
		_, err := f.ledger.AddItem(ctx, catalogItem("C", "3.00"), "1", "Taste of Italy")
		require.NoError(t, err)
		_, err = f.ledger.AddItem(ctx, catalogItem("B", "5.00"), "1", "Taste of Italy")
		require.NoError(t, err)
	}

	resp, err := f.service.Checkout(ctx, testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal})
	require.NoError(t, err)
	f.service.Wait()

	assert.Equal(t, "27.99", resp.Totals.Total.String())
	require.Len(t, f.orders.orders, 1)
	assert.Len(t, f.orders.orders[0].Items, 2)

	assert.False(t, f.ledger.IsInCart("A"))
	assert.Equal(t, 1, f.ledger.QuantityOf("B"))
	assert.Equal(t, 1, f.ledger.QuantityOf("C"))
	assert.Equal(t, 2, f.ledger.ItemCount())
}

func TestCheckoutRecordsPaymentAttempts(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.gateway.outcome = models.PaymentOutcome{Status: models.PaymentFailure}
	_, err := f.service.Checkout(ctx, testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodApplePay})
	require.True(t, models.HasCode(err, models.CodePaymentDeclined))

	f.gateway.outcome = models.PaymentOutcome{Status: models.PaymentSuccess, OrderNumber: "ORD-111111"}
	_, err = f.service.Checkout(ctx, testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal})
	require.NoError(t, err)
	f.service.Wait()

	payments, meta, err := NewPaymentService(f.payments).ListByUser(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.TotalItems)
	require.Len(t, payments, 2)

	assert.Equal(t, models.PaymentRecordSuccess, payments[0].Status)
	assert.Equal(t, "ORD-111111", payments[0].OrderNumber)
	assert.Equal(t, models.PaymentMethodPayPal, payments[0].PaymentMethod)
	assert.Equal(t, "27.99", payments[0].Amount.String())

	assert.Equal(t, models.PaymentRecordFailed, payments[1].Status)
	assert.Empty(t, payments[1].OrderNumber)
}

func TestCheckoutRecordsPendingWhileGatewayRuns(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)

	var during models.PaymentRecordStatus
	f.gateway.during = func() {
		f.payments.mu.Lock()
		defer f.payments.mu.Unlock()
		require.Len(t, f.payments.payments, 1)
		during = f.payments.payments[0].Status
	}
	f.gateway.err = context.DeadlineExceeded

	_, err := f.service.Checkout(context.Background(), testSession, models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal})
	require.Error(t, err)

	assert.Equal(t, models.PaymentRecordPending, during)
	assert.Equal(t, models.PaymentRecordFailed, f.payments.payments[0].Status)
}

func TestOrderServicePagination(t *testing.T) {
	store := &memoryOrderStore{}
	svc := NewOrderService(store)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, svc.Save(ctx, &models.Order{ID: uuid.New(), UserID: 7}))
	}
	require.NoError(t, svc.Save(ctx, &models.Order{ID: uuid.New(), UserID: 8}))

	orders, meta, err := svc.ListByUser(ctx, 7, 2, 5)
	require.NoError(t, err)
	assert.Len(t, orders, 5)
	assert.Equal(t, models.PaginationMeta{Page: 2, Limit: 5, TotalItems: 12, TotalPages: 3}, meta)

	_, meta, err = svc.ListByUser(ctx, 7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, defaultOrderPageSize, meta.Limit)
}

func TestOrderServiceGetByIDNotFound(t *testing.T) {
	svc := NewOrderService(&memoryOrderStore{})

	_, err := svc.GetByID(context.Background(), 7, uuid.New())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
