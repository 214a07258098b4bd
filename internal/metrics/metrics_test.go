package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRepo_CountsByResult(t *testing.T) {
	before := testutil.ToFloat64(repoOps.WithLabelValues("cart", "add", "error"))
	ObserveRepo("cart", "add", errors.New("x"))
	assert.Equal(t, before+1, testutil.ToFloat64(repoOps.WithLabelValues("cart", "add", "error")))

	okBefore := testutil.ToFloat64(repoOps.WithLabelValues("cart", "add", "ok"))
	ObserveRepo("cart", "add", nil)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(repoOps.WithLabelValues("cart", "add", "ok")))
}

func TestSubscribers_Gauge(t *testing.T) {
	before := testutil.ToFloat64(streamSubscribers)
	Subscribers(2)
	Subscribers(-1)
	assert.Equal(t, before+1, testutil.ToFloat64(streamSubscribers))
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/ping/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/ping/:id", "204"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/3", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/ping/:id", "204")))
}
