package redisstock

import (
	"context"
	"fmt"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:stock:"

// Each stock key is a hash with fields qty and track ("1" or "0").
// Script results: -1 unknown key, -2 insufficient, 0 untracked, 1 applied.
var reserveScript = redis.NewScript(`
	local track = redis.call('HGET', KEYS[1], 'track')
	if not track then
		return -1
	end
	if track == '0' then
		return 0
	end
	local qty = tonumber(ARGV[1])
	local have = tonumber(redis.call('HGET', KEYS[1], 'qty'))
	if have < qty then
		return -2
	end
	redis.call('HINCRBY', KEYS[1], 'qty', -qty)
	return 1
`)

var releaseScript = redis.NewScript(`
	local track = redis.call('HGET', KEYS[1], 'track')
	if not track then
		return -1
	end
	if track == '0' then
		return 0
	end
	redis.call('HINCRBY', KEYS[1], 'qty', tonumber(ARGV[1]))
	return 1
`)

// Ledger keeps available quantities in Redis. Check and decrement run in one Lua
// script, so concurrent reservations never oversell.
type Ledger struct {
	client *redis.Client
}

func New(ctx context.Context, conf *config.Stock) (*Ledger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Ledger{client: client}, nil
}

func (l *Ledger) Close() error {
	return l.client.Close()
}

func (l *Ledger) TryReserve(ctx context.Context, key domain.StockKey, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: stock quantity must be positive, got %d", domain.ErrValidation, qty)
	}
	res, err := reserveScript.Run(ctx, l.client, []string{redisKey(key)}, qty).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
	case -2:
		return fmt.Errorf("%w: %s, requested %d", domain.ErrInsufficientStock, key, qty)
	}
	return nil
}

func (l *Ledger) Release(ctx context.Context, key domain.StockKey, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: stock quantity must be positive, got %d", domain.ErrValidation, qty)
	}
	res, err := releaseScript.Run(ctx, l.client, []string{redisKey(key)}, qty).Int()
	if err != nil {
		return err
	}
	if res == -1 {
		return fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
	}
	return nil
}

// Seed loads levels without overwriting keys that already exist, so a restart keeps
// the reservations made since the last seed.
func (l *Ledger) Seed(ctx context.Context, levels []domain.StockLevel) error {
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, level := range levels {
			k := redisKey(level.Key)
			pipe.HSetNX(ctx, k, "qty", level.Quantity)
			pipe.HSetNX(ctx, k, "track", trackFlag(level.TrackQuantity))
		}
		return nil
	})
	return err
}

// Set overwrites the stock of one key.
func (l *Ledger) Set(ctx context.Context, level domain.StockLevel) error {
	return l.client.HSet(ctx, redisKey(level.Key),
		"qty", level.Quantity,
		"track", trackFlag(level.TrackQuantity)).Err()
}

func (l *Ledger) Quantity(ctx context.Context, key domain.StockKey) (int, error) {
	qty, err := l.client.HGet(ctx, redisKey(key), "qty").Int()
	if err == redis.Nil {
		return 0, fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
	}
	return qty, err
}

func redisKey(key domain.StockKey) string {
	return keyPrefix + key.String()
}

func trackFlag(track bool) string {
	if track {
		return "1"
	}
	return "0"
}
