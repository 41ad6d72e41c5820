package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	App      *App
	Database *Database
	HTTP     *HTTP
	Auth     *Auth
	Stock    *Stock
	Notify   *Notify
	Checkout *Checkout
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

const (
	StockBackendPostgres = "postgres"
	StockBackendRedis    = "redis"
)

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
	// IssueToken, when set, makes the binary print an admin token for this operator and exit.
	IssueToken string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString    string `env:"RUN_ADDRESS"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Auth struct {
	// TokenKey is a hex encoded 32 byte PASETO v4 local key. Empty means a random key per run.
	TokenKey string        `env:"TOKEN_KEY"`
	TokenTTL time.Duration `env:"TOKEN_TTL"`
}

type Stock struct {
	Backend       string `env:"STOCK_BACKEND"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
}

type Notify struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE"`
	Workers      int           `env:"OUTBOX_WORKERS"`
}

type Checkout struct {
	Currency string `env:"CHECKOUT_CURRENCY"`
}

func NewConfig() (*Config, error) {
	var app App
	var db Database
	var http HTTP
	var auth Auth
	var stock Stock
	var notify Notify
	var checkout Checkout
	var brokers string

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&http.WebhookSecret, "w", "", "Shared secret of the payment gateway webhook")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.StringVar(&app.IssueToken, "issue-token", "", "Print an admin token for the given operator and exit")
	flag.StringVar(&auth.TokenKey, "k", "", "Token key (hex)")
	flag.DurationVar(&auth.TokenTTL, "token-ttl", 12*time.Hour, "Admin token lifetime")
	flag.StringVar(&stock.Backend, "stock", StockBackendPostgres, "Stock ledger backend: postgres / redis")
	flag.StringVar(&stock.RedisAddr, "redis", "localhost:6379", "Redis address")
	flag.StringVar(&brokers, "kafka", "", "Kafka brokers, comma separated; empty logs events instead")
	flag.StringVar(&notify.Topic, "topic", "storefront.order-events", "Kafka topic for lifecycle events")
	flag.DurationVar(&notify.PollInterval, "outbox-poll", time.Second, "Outbox poll interval")
	flag.IntVar(&notify.BatchSize, "outbox-batch", 100, "Outbox batch size")
	flag.IntVar(&notify.Workers, "outbox-workers", 2, "Outbox relay workers")
	flag.StringVar(&checkout.Currency, "currency", "USD", "Default checkout currency")
	flag.Parse()

	notify.Brokers = splitList(brokers)

	err := env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&auth)
	if err != nil {
		return nil, fmt.Errorf("error parsing auth config: %w", err)
	}
	err = env.Parse(&stock)
	if err != nil {
		return nil, fmt.Errorf("error parsing stock config: %w", err)
	}
	err = env.Parse(&notify)
	if err != nil {
		return nil, fmt.Errorf("error parsing notify config: %w", err)
	}
	err = env.Parse(&checkout)
	if err != nil {
		return nil, fmt.Errorf("error parsing checkout config: %w", err)
	}

	if stock.Backend != StockBackendPostgres && stock.Backend != StockBackendRedis {
		return nil, fmt.Errorf("unknown stock backend %q", stock.Backend)
	}
	if notify.Workers < 1 {
		notify.Workers = 1
	}

	config := Config{
		App:      &app,
		Database: &db,
		HTTP:     &http,
		Auth:     &auth,
		Stock:    &stock,
		Notify:   &notify,
		Checkout: &checkout,
	}

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
