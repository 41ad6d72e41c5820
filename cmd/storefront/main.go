package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeRez0/ypstorefront/internal/adapter/auth"
	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/adapter/handler/http"
	"github.com/MikeRez0/ypstorefront/internal/adapter/logger"
	"github.com/MikeRez0/ypstorefront/internal/adapter/metrics"
	"github.com/MikeRez0/ypstorefront/internal/adapter/notify"
	"github.com/MikeRez0/ypstorefront/internal/adapter/redisstock"
	"github.com/MikeRez0/ypstorefront/internal/adapter/storage"
	"github.com/MikeRez0/ypstorefront/internal/adapter/storage/repository"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/MikeRez0/ypstorefront/internal/core/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		_ = log.Sync()
	}()

	tokenService, err := auth.New(conf.Auth)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	if conf.App.IssueToken != "" {
		token, err := tokenService.CreateToken(domain.Actor(conf.App.IssueToken))
		if err != nil {
			log.Error("token issuing error", zap.Error(err))
			return
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	defer db.Close()
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	orders, err := repository.NewOrderRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}
	payments, err := repository.NewPaymentRepository(db)
	if err != nil {
		log.Error("payment repo creating error", zap.Error(err))
		return
	}
	outbox, err := repository.NewOutboxRepository(db)
	if err != nil {
		log.Error("outbox repo creating error", zap.Error(err))
		return
	}
	stockRepo, err := repository.NewStockRepository(db)
	if err != nil {
		log.Error("stock repo creating error", zap.Error(err))
		return
	}

	var ledger port.StockLedger = stockRepo
	if conf.Stock.Backend == config.StockBackendRedis {
		redisLedger, err := redisstock.New(ctx, conf.Stock)
		if err != nil {
			log.Error("redis stock ledger error", zap.Error(err))
			return
		}
		defer func() { _ = redisLedger.Close() }()

		levels, err := stockRepo.ListStockLevels(ctx)
		if err != nil {
			log.Error("stock levels loading error", zap.Error(err))
			return
		}
		if err := redisLedger.Seed(ctx, levels); err != nil {
			log.Error("redis stock seeding error", zap.Error(err))
			return
		}
		log.Info("Redis stock ledger seeded", zap.Int("keys", len(levels)))
		ledger = redisLedger
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meter := metrics.NewMetrics(registry)

	var publisher port.Publisher = notify.NewLogPublisher(log.Named("Events"))
	if len(conf.Notify.Brokers) > 0 {
		kafkaPublisher, err := notify.NewKafkaPublisher(conf.Notify, log.Named("Kafka"))
		if err != nil {
			log.Error("kafka publisher creating error", zap.Error(err))
			return
		}
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
	}

	relay := notify.NewRelay(outbox, meter.InstrumentPublisher(publisher), conf.Notify, log.Named("Relay"))
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("outbox relay error", zap.Error(err))
		}
	}()

	svc, err := service.NewService(orders, payments, stockRepo, ledger,
		domain.Currency(conf.Checkout.Currency), log)
	if err != nil {
		log.Error("service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	paymentHandler, err := http.NewPaymentHandler(svc, log.Named("Payment handler"))
	if err != nil {
		log.Error("payment handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, meter, orderHandler, paymentHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	log.Info("Storefront started", zap.String("address", conf.HTTP.HostString),
		zap.String("stock", conf.Stock.Backend))
	err = r.Serve(ctx, conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
