package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	handler "github.com/MikeRez0/ypstorefront/internal/adapter/handler/http"
	"github.com/MikeRez0/ypstorefront/internal/adapter/metrics"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/MikeRez0/ypstorefront/internal/core/port/mock"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "s3cret"

type mocks struct {
	service *mock.MockService
	tokens  *mock.MockTokenService
}

func newTestRouter(t *testing.T, prepare func(m mocks)) *handler.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	m := mocks{
		service: mock.NewMockService(ctrl),
		tokens:  mock.NewMockTokenService(ctrl),
	}
	if prepare != nil {
		prepare(m)
	}

	logger := zap.NewNop()
	orders, err := handler.NewOrderHandler(m.service, logger)
	require.NoError(t, err)
	payments, err := handler.NewPaymentHandler(m.service, logger)
	require.NoError(t, err)

	r, err := handler.NewRouter(&config.HTTP{WebhookSecret: webhookSecret}, m.tokens,
		metrics.NewMetrics(prometheus.NewRegistry()), orders, payments, logger)
	require.NoError(t, err)
	return r
}

func testOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(domain.NewOrderParams{
		Number:   "100000000008",
		Currency: "USD",
		ShippingAddress: domain.Address{
			Line1: "5 Market St", City: "Portland", PostalCode: "97201", Country: "US",
		},
		CustomerEmail: "ann@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, o.AddItem(domain.ProductSnapshot{
		ProductID:   uuid.New(),
		ProductName: "Hoodie",
		SKU:         "HD-1",
		UnitPrice:   domain.MustMoney("25.00", "USD"),
	}, 2))
	return o
}

func testPayment(t *testing.T, orderID uuid.UUID) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(orderID, "PAY-1", domain.MustMoney("50.00", "USD"), domain.PaymentMethodCard)
	require.NoError(t, err)
	return p
}

func serve(r *handler.Router, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorsOf(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors
}

func TestRouter_PlaceOrder(t *testing.T) {
	order := testOrder(t)
	productID := uuid.New()

	r := newTestRouter(t, func(m mocks) {
		m.service.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req port.PlaceOrderRequest) (*domain.Order, error) {
				assert.Len(t, req.Lines, 1)
				assert.Equal(t, productID, req.Lines[0].ProductID)
				assert.Equal(t, 3, req.Lines[0].Quantity)
				assert.Equal(t, "4.5", req.Shipping.String())
				return order, nil
			})
	})

	body := `{
		"items": [{"product_id": "` + productID.String() + `", "quantity": 3}],
		"shipping_address": {"line1": "5 Market St", "city": "Portland", "postal_code": "97201", "country": "US"},
		"customer_email": "ann@example.com",
		"shipping": "4.5"
	}`
	rec := serve(r, http.MethodPost, "/api/checkout", body, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp handler.OrderResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "100000000008", resp.Number)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "50.00", resp.Total.Amount)
	assert.Len(t, resp.Items, 1)
}

func TestRouter_PlaceOrderBadAmount(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := serve(r, http.MethodPost, "/api/checkout",
		`{"items": [], "customer_email": "ann@example.com", "tax": "ten"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		err       error
		expStatus int
	}{
		{name: "not found", err: domain.ErrDataNotFound, expStatus: http.StatusNotFound},
		{name: "insufficient stock", err: domain.ErrInsufficientStock, expStatus: http.StatusConflict},
		{name: "invalid transition",
			err:       &domain.TransitionError{Entity: "order", Action: "confirm", From: "CANCELLED"},
			expStatus: http.StatusConflict},
		{name: "validation", err: errors422(), expStatus: http.StatusUnprocessableEntity},
		{name: "unknown", err: assert.AnError, expStatus: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := newTestRouter(t, func(m mocks) {
				m.service.EXPECT().ConfirmOrder(gomock.Any(), id, domain.ActorCustomer).Return(nil, test.err)
			})

			rec := serve(r, http.MethodPost, "/api/orders/"+id.String()+"/confirm", "", nil)

			assert.Equal(t, test.expStatus, rec.Code)
			assert.NotEmpty(t, errorsOf(t, rec))
		})
	}
}

func errors422() error {
	_, err := domain.ParseMoney("abc", "USD")
	return err
}

func TestRouter_BadPathID(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := serve(r, http.MethodGet, "/api/orders/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	id := uuid.New()
	order := testOrder(t)

	tests := []struct {
		name      string
		header    string
		prepare   func(m mocks)
		expStatus int
	}{
		{
			name:      "no header",
			expStatus: http.StatusUnauthorized,
		},
		{
			name:      "wrong type",
			header:    "Basic abc",
			expStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			header: "Bearer old",
			prepare: func(m mocks) {
				m.tokens.EXPECT().VerifyToken("old").Return(nil, domain.ErrExpiredToken)
			},
			expStatus: http.StatusUnauthorized,
		},
		{
			name:   "operator recorded",
			header: "Bearer good",
			prepare: func(m mocks) {
				m.tokens.EXPECT().VerifyToken("good").Return(&port.TokenPayload{Actor: "alice"}, nil)
				m.service.EXPECT().ShipOrder(gomock.Any(), id, domain.Actor("alice"), "1Z999", "UPS").
					Return(order, nil)
			},
			expStatus: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := newTestRouter(t, test.prepare)
			headers := map[string]string{}
			if test.header != "" {
				headers["Authorization"] = test.header
			}

			rec := serve(r, http.MethodPost, "/api/admin/orders/"+id.String()+"/ship",
				`{"tracking_number": "1Z999", "carrier": "UPS"}`, headers)

			assert.Equal(t, test.expStatus, rec.Code)
		})
	}
}

func TestRouter_AdminAdjustment(t *testing.T) {
	id := uuid.New()
	order := testOrder(t)

	r := newTestRouter(t, func(m mocks) {
		m.tokens.EXPECT().VerifyToken("good").Return(&port.TokenPayload{Actor: "alice"}, nil)
		m.service.EXPECT().ApplyDiscount(gomock.Any(), id, domain.MustMoney("5", "USD")).Return(order, nil)
	})

	rec := serve(r, http.MethodPut, "/api/admin/orders/"+id.String()+"/discount",
		`{"amount": "5", "currency": "usd"}`, map[string]string{"Authorization": "Bearer good"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_GatewayWebhook(t *testing.T) {
	order := testOrder(t)
	payment := testPayment(t, order.ID())
	body := `{"payment_reference": "PAY-1", "transaction_id": "tx-1", "status": "completed"}`

	t.Run("missing secret", func(t *testing.T) {
		r := newTestRouter(t, nil)
		rec := serve(r, http.MethodPost, "/api/webhooks/payments", body, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("completed", func(t *testing.T) {
		r := newTestRouter(t, func(m mocks) {
			m.service.EXPECT().HandleGatewayCallback(gomock.Any(), port.GatewayCallback{
				PaymentReference: "PAY-1",
				TransactionID:    "tx-1",
				Outcome:          domain.PaymentStatusCompleted,
			}).Return(payment, nil)
		})
		rec := serve(r, http.MethodPost, "/api/webhooks/payments", body,
			map[string]string{"X-Webhook-Secret": webhookSecret})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handler.PaymentResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "PAY-1", resp.Reference)
	})
}

func TestRouter_RefundExceedsPayment(t *testing.T) {
	id := uuid.New()

	r := newTestRouter(t, func(m mocks) {
		m.tokens.EXPECT().VerifyToken("good").Return(&port.TokenPayload{Actor: "alice"}, nil)
		m.service.EXPECT().RefundPayment(gomock.Any(), id, domain.MustMoney("80", "USD"), "RF-1").
			Return(nil, domain.ErrRefundExceedsPayment)
	})

	rec := serve(r, http.MethodPost, "/api/admin/payments/"+id.String()+"/refunds",
		`{"amount": "80", "currency": "USD", "reference": "RF-1"}`,
		map[string]string{"Authorization": "Bearer good"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{domain.ErrRefundExceedsPayment.Error()}, errorsOf(t, rec))
}

func TestRouter_OpenPaymentUnknownMethod(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := serve(r, http.MethodPost, "/api/orders/"+uuid.NewString()+"/payments", `{"method": "barter"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
