package notify

import (
	"context"
	"time"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Relay moves committed outbox events to the publisher. Events are marked sent only
// after a successful publish, so delivery is at least once.
type Relay struct {
	outbox    port.Outbox
	publisher port.Publisher
	interval  time.Duration
	batch     int
	workers   int
	logger    *zap.Logger
}

func NewRelay(outbox port.Outbox, publisher port.Publisher, conf *config.Notify, logger *zap.Logger) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  conf.PollInterval,
		batch:     conf.BatchSize,
		workers:   conf.Workers,
		logger:    logger,
	}
	if r.interval <= 0 {
		r.interval = defaultPollInterval
	}
	if r.batch <= 0 {
		r.batch = defaultBatchSize
	}
	if r.workers <= 0 {
		r.workers = 1
	}
	return r
}

// Run polls the outbox with the configured number of workers until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := range r.workers {
		g.Go(func() error {
			r.work(ctx, w)
			return nil
		})
	}
	return g.Wait()
}

func (r *Relay) work(ctx context.Context, worker int) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.Flush(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error("Outbox dispatch failed", zap.Int("worker", worker), zap.Error(err))
		}
		if n > 0 {
			r.logger.Debug("Outbox flushed", zap.Int("worker", worker), zap.Int("events", n))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			r.logger.Debug("Finished worker", zap.Int("worker", worker))
			return
		}
	}
}

// Flush dispatches batches until one comes back short or fails.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	var total int
	for {
		n, err := r.outbox.Dispatch(ctx, r.batch, r.publish)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batch {
			return total, nil
		}
	}
}

func (r *Relay) publish(ctx context.Context, events []domain.Event) error {
	return r.publisher.Publish(ctx, events...)
}
