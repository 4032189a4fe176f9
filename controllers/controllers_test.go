package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"food-order/logger"
	"food-order/middleware"
	"food-order/models"
	"food-order/repositories"
	"food-order/services"
	"food-order/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	status models.PaymentStatus
}

func (g *stubGateway) AttemptPayment(context.Context, decimal.Decimal) (models.PaymentOutcome, error) {
	if g.status == models.PaymentFailure {
		return models.PaymentOutcome{Status: models.PaymentFailure}, nil
	}
	return models.PaymentOutcome{Status: models.PaymentSuccess, OrderNumber: "ORD-123456"}, nil
}

type memoryOrders struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *memoryOrders) Save(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *order)
	return nil
}

func (m *memoryOrders) ListByUser(_ context.Context, userID, page, limit int) ([]models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Order{}, len(mine), nil
	}
	end := min(start+limit, len(mine))
	return mine[start:end], len(mine), nil
}

func (m *memoryOrders) GetByID(_ context.Context, userID int, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id && o.UserID == userID {
			order := o
			return &order, nil
		}
	}
	return nil, repositories.ErrOrderNotFound
}

type memoryPayments struct {
	mu       sync.Mutex
	payments []models.Payment
}

func (m *memoryPayments) Create(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *memoryPayments) UpdateStatus(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID == payment.ID {
			m.payments[i] = *payment
			return nil
		}
	}
	return repositories.ErrPaymentNotFound
}

func (m *memoryPayments) ListByUser(_ context.Context, userID, page, limit int) ([]models.Payment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.Payment
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].UserID == userID {
			mine = append(mine, m.payments[i])
		}
	}
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Payment{}, len(mine), nil
	}
	return mine[start:min(start+limit, len(mine))], len(mine), nil
}

// cartFailStore fails cart writes while fail is set.
type cartFailStore struct {
	*repositories.MemoryStore
	fail atomic.Bool
}

func (s *cartFailStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.fail.Load() && key == repositories.KeyCartItems {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

type testServer struct {
	router  *gin.Engine
	ledger  *services.CartLedger
	gateway *stubGateway
	kv      *cartFailStore
	tokens  *utils.TokenManager
	token   string
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLog(t, logger.Nop())
}

func newTestServerWithLog(t *testing.T, log *logger.Logger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := &cartFailStore{MemoryStore: repositories.NewMemoryStore()}
	ledger := services.NewCartLedger(kv, log)
	gateway := &stubGateway{status: models.PaymentSuccess}
	orders := services.NewOrderService(&memoryOrders{})
	payments := services.NewPaymentService(&memoryPayments{})
	stores := services.NewStoreService(repositories.NewStaticCatalog(), kv, log)
	locations := services.NewLocationService(kv, nil, log)
	checkout := services.NewCheckoutService(ledger, gateway, orders, payments, nil, services.CheckoutConfig{
		TaxRate:     decimal.RequireFromString("0.15"),
		DeliveryFee: decimal.RequireFromString("4.99"),
	}, log)
	auth := services.NewAuthService(services.AuthDeps{Session: kv, Ledger: ledger, Log: log})
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	token, _, err := tokens.GenerateToken(7, "ann@example.com", "customer")
	require.NoError(t, err)
	require.NoError(t, repositories.SetJSON(context.Background(), kv, repositories.KeySession,
		models.Session{UserID: 7, Email: "ann@example.com", Name: "Ann"}, 0))

	router := gin.New()
	router.Use(middleware.Recovery(log))
	authMW := middleware.AuthMiddleware(tokens, log)
	sessionMW := middleware.SessionMiddleware(auth, log)
	cart := NewCartController(ledger, stores, checkout, log)
	checkoutCtrl := NewCheckoutController(checkout, log)
	storeCtrl := NewStoreController(stores, locations, log)
	locationCtrl := NewLocationController(locations, log)
	orderCtrl := NewOrderController(orders, log)
	paymentCtrl := NewPaymentController(payments, log)

	router.GET("/stores", storeCtrl.GetStores)
	router.GET("/stores/:id", storeCtrl.GetStoreByID)
	router.GET("/categories", storeCtrl.GetCategories)
	router.GET("/search/recent", storeCtrl.GetRecentSearches)
	authed := router.Group("/", authMW)
	authed.GET("/orders", orderCtrl.GetOrders)
	authed.GET("/orders/:id", orderCtrl.GetOrderByID)
	authed.GET("/payments", paymentCtrl.GetPayments)
	authed.PUT("/location", locationCtrl.UpdateLocation)
	authed.GET("/location", locationCtrl.GetLocation)
	authed.GET("/location/address", locationCtrl.GetCurrentAddress)
	owned := authed.Group("/", sessionMW)
	owned.GET("/cart", cart.GetCart)
	owned.POST("/cart/items", cart.AddItem)
	owned.PATCH("/cart/items/:itemId", cart.UpdateQuantity)
	owned.DELETE("/cart/items/:itemId", cart.RemoveItem)
	owned.DELETE("/cart", cart.ClearCart)
	owned.POST("/checkout", checkoutCtrl.Checkout)

	return &testServer{router: router, ledger: ledger, gateway: gateway, kv: kv, tokens: tokens, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	token := ""
	if authed {
		token = s.token
	}
	return s.doWithToken(t, method, path, body, token)
}

func (s *testServer) doWithToken(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Meta    models.PaginationMeta
	Links   models.PaginationLinks
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestCartRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/cart", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartAddUpdateRemove(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "101"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "101"}, true)

	var mutation models.CartMutationResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &mutation))
	assert.Equal(t, "Margherita Pizza", mutation.Item.Name)
	assert.Equal(t, 2, s.ledger.QuantityOf("101"))

	qty := 5
	w = s.do(t, http.MethodPatch, "/cart/items/101", models.UpdateQuantityRequest{Quantity: &qty}, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &mutation))
	assert.Equal(t, 5, mutation.Cart.ItemCount)
	assert.Equal(t, "74.95", mutation.Cart.Totals.Subtotal.String())

	w = s.do(t, http.MethodDelete, "/cart/items/101", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.ledger.IsEmpty())
}

func TestCartAddUnknownItem(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "999"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(models.CodeNotFound), decode(t, w).Error)

	w = s.do(t, http.MethodPost, "/cart/items", map[string]string{"storeId": "1"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	w := s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, err := s.ledger.AddItem(ctx, models.CatalogItem{ID: "A", Name: "A", Price: decimal.RequireFromString("10.00")}, "1", "Taste of Italy")
	require.NoError(t, err)

	w = s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{
		PaymentMethod: models.PaymentMethodCreditCard,
		Card:          models.PaymentInfo{CardNumber: "123", ExpiryDate: "01/20", CVV: "1", CardholderName: "A"},
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(decode(t, w).Details), "cardNumber")

	s.gateway.status = models.PaymentFailure
	w = s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodApplePay}, true)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.False(t, s.ledger.IsEmpty())

	s.gateway.status = models.PaymentSuccess
	w = s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodApplePay}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, s.ledger.IsEmpty())

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, "ORD-123456", resp.OrderNumber)
	assert.Equal(t, "16.49", resp.Totals.Total.String())

	w = s.do(t, http.MethodGet, "/orders", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, 1, env.Meta.TotalItems)
	assert.Contains(t, env.Links.Self, "page=1")
	assert.Empty(t, env.Links.Next)

	w = s.do(t, http.MethodGet, "/orders/"+resp.OrderID.String(), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/orders/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/orders/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoresEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/stores?search=sushi", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []models.StoreListing
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "Sushi Wave", listings[0].Name)

	w = s.do(t, http.MethodGet, "/stores?lat=44.6388&lng=-63.5717", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listings))
	assert.Equal(t, "3", listings[0].ID)
	require.NotNil(t, listings[0].DistanceKm)

	w = s.do(t, http.MethodGet, "/stores?lat=abc&lng=1", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/stores?sort=price", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/stores/42", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/search/recent", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var searches []string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &searches))
	assert.Equal(t, []string{"sushi"}, searches)
}

func TestStoresUseLastKnownLocation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/location", map[string]float64{"latitude": 44.6505, "longitude": -63.5908}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/stores", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []models.StoreListing
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listings))
	assert.Equal(t, "4", listings[0].ID)
}

func TestLocationEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/location", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/location", map[string]float64{"latitude": 120, "longitude": 0}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/location", map[string]float64{"latitude": 44.6488, "longitude": -63.5752}, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/location", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/location/address", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(models.CodeDependency), decode(t, w).Error)
}

func TestCartBelongsToSessionUser(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "101"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	other, _, err := s.tokens.GenerateToken(8, "bob@example.com", "customer")
	require.NoError(t, err)

	w = s.doWithToken(t, http.MethodGet, "/cart", nil, other)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(models.CodeUnauthorized), decode(t, w).Error)

	w = s.doWithToken(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal}, other)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, s.ledger.ItemCount())

	require.NoError(t, s.kv.Remove(context.Background(), repositories.KeySession))
	w = s.do(t, http.MethodGet, "/cart", nil, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentsHistory(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "101"}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	s.gateway.status = models.PaymentFailure
	w = s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodApplePay}, true)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	s.gateway.status = models.PaymentSuccess
	w = s.do(t, http.MethodPost, "/checkout", models.CheckoutRequest{PaymentMethod: models.PaymentMethodPayPal}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/payments?limit=1", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, 2, env.Meta.TotalItems)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.Contains(t, env.Links.Next, "page=2")

	var payments []models.Payment
	require.NoError(t, json.Unmarshal(env.Data, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentRecordSuccess, payments[0].Status)
	assert.Equal(t, "ORD-123456", payments[0].OrderNumber)

	w = s.do(t, http.MethodGet, "/payments?page=2&limit=1", nil, true)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentRecordFailed, payments[0].Status)
}

func TestCartPersistenceFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServerWithLog(t, logger.New(logger.Options{ServiceName: "test", Output: &buf}))

	w := s.do(t, http.MethodPost, "/cart/items", models.AddCartItemRequest{StoreID: "1", ItemID: "101"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	buf.Reset()

	s.kv.fail.Store(true)
	qty := 3
	w = s.do(t, http.MethodPatch, "/cart/items/101", models.UpdateQuantityRequest{Quantity: &qty}, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(models.CodePersistence), decode(t, w).Error)

	assert.Equal(t, 1, strings.Count(buf.String(), `"level":"error"`), buf.String())
}
