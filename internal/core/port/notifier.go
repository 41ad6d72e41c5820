package port

import (
	"context"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
)

//go:generate mockgen -source=notifier.go -destination=mock/notifier.go -package=mock
type Publisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
