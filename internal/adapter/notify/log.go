package notify

import (
	"context"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"go.uber.org/zap"
)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events ...domain.Event) error {
	for _, e := range events {
		p.logger.Info("Event",
			zap.String("type", string(e.Type)),
			zap.String("id", e.ID.String()),
			zap.String("order_id", e.OrderID.String()),
			zap.String("order", string(e.OrderNumber)),
			zap.String("from", e.From),
			zap.String("to", e.To),
			zap.String("actor", string(e.Actor)),
			zap.String("reason", e.Reason),
			zap.Time("at", e.OccurredAt))
	}
	return nil
}
