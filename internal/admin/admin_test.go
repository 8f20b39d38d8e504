package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inverno-io/gohttpcore/internal/httpx"
	"github.com/inverno-io/gohttpcore/internal/metrics"
	"github.com/inverno-io/gohttpcore/internal/routing"
)

type fakeLister struct{ routes []routing.Route }

func (f fakeLister) Routes() []routing.Route { return f.routes }

func TestDebugRoutesListsRoutes(t *testing.T) {
	res := func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) { return nil, nil }
	lister := fakeLister{routes: []routing.Route{{Path: "/ping", Method: "GET", Resource: res}}}

	h := NewHandler(lister, metrics.New())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/routes", nil)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/ping")
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	h := NewHandler(fakeLister{}, metrics.New())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
