package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port/mock"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/1", http.NoBody))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("/orders/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "404")))
}

func TestInstrumentPublisher(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	m := NewMetrics(prometheus.NewRegistry())
	next := mock.NewMockPublisher(mockCtrl)
	p := m.InstrumentPublisher(next)

	placed := domain.Event{Type: domain.EventOrderPlaced}
	opened := domain.Event{Type: domain.EventPaymentOpened}

	next.EXPECT().Publish(gomock.Any(), placed).Return(nil)
	next.EXPECT().Publish(gomock.Any(), opened).Return(errors.New("down"))

	assert.NoError(t, p.Publish(context.Background(), placed))
	assert.Error(t, p.Publish(context.Background(), opened))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("order.placed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("payment.opened", "error")))
}

func TestHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.Events.WithLabelValues("order.placed", "ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_events_published_total")
}
