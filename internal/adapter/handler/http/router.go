package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/adapter/metrics"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	meter *metrics.Metrics,
	orderHandler *OrderHandler,
	paymentHandler *PaymentHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), meter.GinMiddleware())

	guard := NewHandler(logger)

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(meter.Handler()))

	api := router.Group("/api")
	{
		api.POST("/checkout", orderHandler.PlaceOrder)
		api.GET("/order-numbers/:number", orderHandler.GetOrderByNumber)

		orders := api.Group("/orders/:id")
		{
			orders.GET("", orderHandler.GetOrder)
			orders.POST("/items", orderHandler.AddOrderItem)
			orders.PATCH("/items/:product", orderHandler.UpdateOrderItemQuantity)
			orders.DELETE("/items/:product", orderHandler.RemoveOrderItem)
			orders.POST("/confirm", orderHandler.ConfirmOrder)
			orders.POST("/cancel", orderHandler.CancelOrder)
			orders.GET("/payments", paymentHandler.ListPaymentsByOrder)
			orders.POST("/payments", paymentHandler.OpenPayment)
		}

		webhooks := api.Group("/webhooks")
		{
			webhooks.Use(webhookCheck(guard, conf.WebhookSecret))
			webhooks.POST("/payments", paymentHandler.GatewayCallback)
		}

		admin := api.Group("/admin")
		{
			admin.Use(authCheck(guard, tokenService))
			admin.GET("/orders", orderHandler.ListOrdersByStatus)

			order := admin.Group("/orders/:id")
			{
				order.GET("", orderHandler.GetOrder)
				order.PUT("/discount", orderHandler.ApplyDiscount)
				order.PUT("/tax", orderHandler.UpdateTax)
				order.PUT("/shipping", orderHandler.UpdateShipping)
				order.POST("/confirm", orderHandler.ConfirmOrder)
				order.POST("/processing", orderHandler.StartProcessing)
				order.POST("/ship", orderHandler.ShipOrder)
				order.POST("/out-for-delivery", orderHandler.MarkOutForDelivery)
				order.POST("/deliver", orderHandler.DeliverOrder)
				order.POST("/cancel", orderHandler.CancelOrder)
			}

			payment := admin.Group("/payments/:id")
			{
				payment.GET("", paymentHandler.GetPayment)
				payment.POST("/processing", paymentHandler.MarkPaymentProcessing)
				payment.POST("/cancel", paymentHandler.CancelPayment)
				payment.POST("/refunds", paymentHandler.RefundPayment)
			}
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server and shuts it down gracefully once ctx is done
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
