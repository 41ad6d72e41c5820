package http

import (
	"errors"
	"net/http"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:            http.StatusInternalServerError,
	domain.ErrDataNotFound:        http.StatusNotFound,
	domain.ErrConflictingData:     http.StatusConflict,
	domain.ErrConcurrencyConflict: http.StatusConflict,

	domain.ErrTokenCreation:              http.StatusInternalServerError,
	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrExpiredToken:               http.StatusUnauthorized,
	domain.ErrForbidden:                  http.StatusForbidden,

	domain.ErrBadRequest:           http.StatusBadRequest,
	domain.ErrValidation:           http.StatusUnprocessableEntity,
	domain.ErrCurrencyMismatch:     http.StatusUnprocessableEntity,
	domain.ErrRefundExceedsPayment: http.StatusUnprocessableEntity,

	domain.ErrInvalidStateTransition: http.StatusConflict,
	domain.ErrOrderLocked:            http.StatusConflict,
	domain.ErrInsufficientStock:      http.StatusConflict,
	domain.ErrOrderAlreadyPaid:       http.StatusConflict,
}

// statusFor maps err to a status code through the sentinels it wraps.
func statusFor(err error) (int, bool) {
	if status, ok := errorStatusMap[err]; ok {
		return status, true
	}
	for sentinel, status := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return status, true
		}
	}
	return http.StatusInternalServerError, false
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for a request that could not be parsed
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, errorResponse{Errors: []string{domain.ErrBadRequest.Error(), err.Error()}})
}

// handleAbort sends an error response and aborts the request with the status code mapped from err
func (h *Handler) handleAbort(ctx *gin.Context, err error) {
	statusCode, known := statusFor(err)
	if !known {
		h.logger.Error("aborting request", zap.Error(err))
	}
	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(statusCode, errorResponse{Errors: domain.Messages(err)})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, known := statusFor(err)
	if !known {
		h.logger.Error("error processing request", zap.Error(err), zap.String("path", ctx.FullPath()))
		ctx.JSON(statusCode, errorResponse{Errors: []string{domain.ErrInternal.Error()}})
		return
	}
	ctx.JSON(statusCode, errorResponse{Errors: domain.Messages(err)})
}

// handleSuccessWithStatus sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
