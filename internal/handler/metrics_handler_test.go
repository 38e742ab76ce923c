package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingStub struct{ err error }

func (p pingStub) PingContext(context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, tc := range map[string]struct {
		db   pinger
		code int
	}{
		"no database": {db: nil, code: http.StatusOK},
		"healthy":     {db: pingStub{}, code: http.StatusOK},
		"down":        {db: pingStub{err: errors.New("connection refused")}, code: http.StatusServiceUnavailable},
	} {
		t.Run(name, func(t *testing.T) {
			h := NewMetricsHandler(nil, tc.db)
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			h.Ready(c)

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestMetricsHandlerPrometheusWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	h.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsHandlerPrometheusRouted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", NewMetricsHandler(nil, nil).Prometheus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
