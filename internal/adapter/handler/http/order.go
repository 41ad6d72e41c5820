package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderLineReq struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
}

func (l orderLineReq) line() port.OrderLine {
	line := port.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity}
	if l.VariantID != nil {
		line.VariantID = uuid.NullUUID{UUID: *l.VariantID, Valid: true}
	}
	return line
}

type placeOrderReq struct {
	UserID          *uuid.UUID     `json:"user_id"`
	Currency        string         `json:"currency"`
	Items           []orderLineReq `json:"items" binding:"required"`
	ShippingAddress domain.Address `json:"shipping_address"`
	BillingAddress  domain.Address `json:"billing_address"`
	CustomerEmail   string         `json:"customer_email" binding:"required"`
	CustomerPhone   string         `json:"customer_phone"`
	Notes           string         `json:"notes"`
	Tax             string         `json:"tax"`
	Shipping        string         `json:"shipping"`
	Discount        string         `json:"discount"`
}

// PlaceOrder turns a cart into a Pending order.
func (oh *OrderHandler) PlaceOrder(ctx *gin.Context) {
	var req placeOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order := port.PlaceOrderRequest{
		Currency:        domain.Currency(req.Currency),
		Lines:           make([]port.OrderLine, 0, len(req.Items)),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
	}
	if req.UserID != nil {
		order.UserID = uuid.NullUUID{UUID: *req.UserID, Valid: true}
	}
	for _, item := range req.Items {
		order.Lines = append(order.Lines, item.line())
	}

	amounts := []struct {
		field string
		src   string
		dest  *decimal.Decimal
	}{
		{"tax", req.Tax, &order.Tax},
		{"shipping", req.Shipping, &order.Shipping},
		{"discount", req.Discount, &order.Discount},
	}
	for _, a := range amounts {
		d, err := parseAmount(a.field, a.src)
		if err != nil {
			oh.handleValidationError(ctx, err)
			return
		}
		*a.dest = d
	}

	created, err := oh.service.PlaceOrder(ctx, order)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResp(created), http.StatusCreated)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}

	order, err := oh.service.GetOrder(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) GetOrderByNumber(ctx *gin.Context) {
	order, err := oh.service.GetOrderByNumber(ctx, domain.OrderNumber(ctx.Param("number")))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) ListOrdersByStatus(ctx *gin.Context) {
	var limit uint64
	if s := ctx.Query("limit"); s != "" {
		var err error
		if limit, err = strconv.ParseUint(s, 10, 64); err != nil {
			oh.handleValidationError(ctx, fmt.Errorf("limit: %w", err))
			return
		}
	}

	list, err := oh.service.ListOrdersByStatus(ctx, domain.OrderStatus(strings.ToUpper(ctx.Query("status"))), limit)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]OrderResp, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResp(o))
	}
	oh.handleSuccess(ctx, result)
}

// * Lines.

func (oh *OrderHandler) AddOrderItem(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}
	var req orderLineReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.AddOrderItem(ctx, id, req.line())
	oh.respondOrder(ctx, order, err)
}

type itemQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (oh *OrderHandler) UpdateOrderItemQuantity(ctx *gin.Context) {
	id, key, ok := oh.itemKey(ctx)
	if !ok {
		return
	}
	var req itemQuantityReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.UpdateOrderItemQuantity(ctx, id, key, req.Quantity)
	oh.respondOrder(ctx, order, err)
}

func (oh *OrderHandler) RemoveOrderItem(ctx *gin.Context) {
	id, key, ok := oh.itemKey(ctx)
	if !ok {
		return
	}

	order, err := oh.service.RemoveOrderItem(ctx, id, key)
	oh.respondOrder(ctx, order, err)
}

// * Adjustments.

type adjustmentReq struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

func (oh *OrderHandler) ApplyDiscount(ctx *gin.Context) {
	oh.adjust(ctx, oh.service.ApplyDiscount)
}

func (oh *OrderHandler) UpdateTax(ctx *gin.Context) {
	oh.adjust(ctx, oh.service.UpdateTax)
}

func (oh *OrderHandler) UpdateShipping(ctx *gin.Context) {
	oh.adjust(ctx, oh.service.UpdateShipping)
}

func (oh *OrderHandler) adjust(ctx *gin.Context,
	apply func(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error)) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}
	var req adjustmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	amount, err := domain.ParseMoney(req.Amount, req.Currency)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := apply(ctx, id, amount)
	oh.respondOrder(ctx, order, err)
}

// * Lifecycle.

func (oh *OrderHandler) ConfirmOrder(ctx *gin.Context) {
	oh.transition(ctx, oh.service.ConfirmOrder)
}

func (oh *OrderHandler) StartProcessing(ctx *gin.Context) {
	oh.transition(ctx, oh.service.StartProcessing)
}

func (oh *OrderHandler) MarkOutForDelivery(ctx *gin.Context) {
	oh.transition(ctx, oh.service.MarkOutForDelivery)
}

func (oh *OrderHandler) DeliverOrder(ctx *gin.Context) {
	oh.transition(ctx, oh.service.DeliverOrder)
}

type shipReq struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Carrier        string `json:"carrier"`
}

func (oh *OrderHandler) ShipOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}
	var req shipReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.ShipOrder(ctx, id, actor(ctx), req.TrackingNumber, req.Carrier)
	oh.respondOrder(ctx, order, err)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}
	var req cancelReq
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			oh.handleValidationError(ctx, err)
			return
		}
	}

	order, err := oh.service.CancelOrder(ctx, id, actor(ctx), req.Reason)
	oh.respondOrder(ctx, order, err)
}

func (oh *OrderHandler) transition(ctx *gin.Context,
	apply func(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error)) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}

	order, err := apply(ctx, id, actor(ctx))
	oh.respondOrder(ctx, order, err)
}

func (oh *OrderHandler) respondOrder(ctx *gin.Context, order *domain.Order, err error) {
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) itemKey(ctx *gin.Context) (uuid.UUID, domain.StockKey, bool) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return uuid.Nil, domain.StockKey{}, false
	}
	product, ok := oh.pathID(ctx, "product")
	if !ok {
		return uuid.Nil, domain.StockKey{}, false
	}

	key := domain.StockKey{ProductID: product}
	if s := ctx.Query("variant"); s != "" {
		variant, err := uuid.Parse(s)
		if err != nil {
			oh.handleValidationError(ctx, fmt.Errorf("variant: %w", err))
			return uuid.Nil, domain.StockKey{}, false
		}
		key.VariantID = uuid.NullUUID{UUID: variant, Valid: true}
	}
	return id, key, true
}

// pathID parses a uuid path parameter, answering 400 when it is malformed.
func (h *Handler) pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		h.handleValidationError(ctx, fmt.Errorf("%s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.Parse(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
