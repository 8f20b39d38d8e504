// Package admin exposes the engine's debug surface: a JSON route listing
// and a Prometheus scrape endpoint, mounted on a gorilla/mux router
// separate from the data-plane listener.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inverno-io/gohttpcore/internal/metrics"
	"github.com/inverno-io/gohttpcore/internal/routing"
)

// RouteLister is implemented by internal/router.Router.
type RouteLister interface {
	Routes() []routing.Route
}

// debugRoute is the JSON shape served at /debug/routes — a Route minus its
// unserializable Resource closure.
type debugRoute struct {
	Path          string   `json:"path,omitempty"`
	PathPattern   string   `json:"path_pattern,omitempty"`
	TrailingSlash bool     `json:"trailing_slash,omitempty"`
	Method        string   `json:"method,omitempty"`
	Languages     []string `json:"languages,omitempty"`
}

// NewHandler builds the admin mux: GET /debug/routes and GET /metrics.
func NewHandler(routes RouteLister, m *metrics.Metrics) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/debug/routes", func(w http.ResponseWriter, req *http.Request) {
		out := make([]debugRoute, 0, len(routes.Routes()))
		for _, rt := range routes.Routes() {
			out = append(out, debugRoute{
				Path:          rt.Path,
				PathPattern:   rt.PathPattern,
				TrailingSlash: rt.TrailingSlash,
				Method:        rt.Method,
				Languages:     rt.Languages,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}
