package domain_test

import (
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStockLevel_Reduce(t *testing.T) {
	key := domain.StockKey{ProductID: uuid.New()}

	tests := []struct {
		name    string
		level   domain.StockLevel
		qty     int
		wantErr error
		wantQty int
	}{
		{
			name:    "more than available",
			level:   domain.StockLevel{Key: key, Quantity: 3, TrackQuantity: true},
			qty:     4,
			wantErr: domain.ErrInsufficientStock,
			wantQty: 3,
		},
		{
			name:    "exactly available",
			level:   domain.StockLevel{Key: key, Quantity: 3, TrackQuantity: true},
			qty:     3,
			wantQty: 0,
		},
		{
			name:    "untracked never runs out",
			level:   domain.StockLevel{Key: key, Quantity: 0, TrackQuantity: false},
			qty:     100,
			wantQty: 0,
		},
		{
			name:    "zero quantity",
			level:   domain.StockLevel{Key: key, Quantity: 3, TrackQuantity: true},
			qty:     0,
			wantErr: domain.ErrValidation,
			wantQty: 3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			level := test.level
			err := level.Reduce(test.qty)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.wantQty, level.Quantity)
		})
	}
}

func TestStockLevel_Increase(t *testing.T) {
	level := domain.StockLevel{Quantity: 1, TrackQuantity: true}
	assert.NoError(t, level.Increase(2))
	assert.Equal(t, 3, level.Quantity)
	assert.ErrorIs(t, level.Increase(-1), domain.ErrValidation)
}

func TestStockKey_String(t *testing.T) {
	p := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	v := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, p.String(), domain.StockKey{ProductID: p}.String())
	assert.Equal(t, p.String()+"/"+v.String(),
		domain.StockKey{ProductID: p, VariantID: uuid.NullUUID{UUID: v, Valid: true}}.String())
}
