package http

import (
	"net/http"
	"strings"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Handler
	service port.Service
}

func NewPaymentHandler(service port.Service, logger *zap.Logger) (*PaymentHandler, error) {
	return &PaymentHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type openPaymentReq struct {
	Method string `json:"method" binding:"required"`
}

func (ph *PaymentHandler) OpenPayment(ctx *gin.Context) {
	orderID, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}
	var req openPaymentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ph.handleValidationError(ctx, err)
		return
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	payment, err := ph.service.OpenPayment(ctx, orderID, method)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccessWithStatus(ctx, newPaymentResp(payment), http.StatusCreated)
}

func (ph *PaymentHandler) ListPaymentsByOrder(ctx *gin.Context) {
	orderID, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	list, err := ph.service.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	result := make([]PaymentResp, 0, len(list))
	for _, p := range list {
		result = append(result, newPaymentResp(p))
	}
	ph.handleSuccess(ctx, result)
}

func (ph *PaymentHandler) GetPayment(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	payment, err := ph.service.GetPayment(ctx, id)
	ph.respondPayment(ctx, payment, err)
}

func (ph *PaymentHandler) MarkPaymentProcessing(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	payment, err := ph.service.MarkPaymentProcessing(ctx, id)
	ph.respondPayment(ctx, payment, err)
}

func (ph *PaymentHandler) CancelPayment(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	payment, err := ph.service.CancelPayment(ctx, id)
	ph.respondPayment(ctx, payment, err)
}

type refundReq struct {
	Amount    string `json:"amount" binding:"required"`
	Currency  string `json:"currency" binding:"required"`
	Reference string `json:"reference" binding:"required"`
}

func (ph *PaymentHandler) RefundPayment(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}
	var req refundReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ph.handleValidationError(ctx, err)
		return
	}
	amount, err := domain.ParseMoney(req.Amount, req.Currency)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	payment, err := ph.service.RefundPayment(ctx, id, amount, req.Reference)
	ph.respondPayment(ctx, payment, err)
}

type gatewayCallbackReq struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
	TransactionID    string `json:"transaction_id" binding:"required"`
	Status           string `json:"status" binding:"required"`
	Reason           string `json:"reason"`
	Response         string `json:"response"`
}

var gatewayOutcomes = map[string]domain.PaymentStatus{
	"completed": domain.PaymentStatusCompleted,
	"succeeded": domain.PaymentStatusCompleted,
	"failed":    domain.PaymentStatusFailed,
	"declined":  domain.PaymentStatusFailed,
}

// GatewayCallback applies a payment gateway notification. Redelivered callbacks answer
// with the stored payment.
func (ph *PaymentHandler) GatewayCallback(ctx *gin.Context) {
	var req gatewayCallbackReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	outcome, ok := gatewayOutcomes[strings.ToLower(req.Status)]
	if !ok {
		outcome = domain.PaymentStatus(strings.ToUpper(req.Status))
	}

	payment, err := ph.service.HandleGatewayCallback(ctx, port.GatewayCallback{
		PaymentReference: req.PaymentReference,
		TransactionID:    req.TransactionID,
		Outcome:          outcome,
		Reason:           req.Reason,
		Response:         req.Response,
	})
	ph.respondPayment(ctx, payment, err)
}

func (ph *PaymentHandler) respondPayment(ctx *gin.Context, payment *domain.Payment, err error) {
	if err != nil {
		ph.handleError(ctx, err)
		return
	}
	ph.handleSuccess(ctx, newPaymentResp(payment))
}
