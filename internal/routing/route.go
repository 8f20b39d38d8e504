// Package routing implements the composable routing-link chain described
// by the router: path (exact + pattern), method, consumes, produces,
// accepted-language, and query-parameter matchers, composed into a tree
// that resolves a request to a resource.
//
// Per the redesign note this replaces a polymorphic per-criterion class
// hierarchy with a single tagged link type and a dispatch function —
// idiomatic Go favors one concrete type switched on a kind over six
// interfaces implementing the same five-method contract.
package routing

import (
	"context"

	"github.com/inverno-io/gohttpcore/internal/httpx"
	"github.com/inverno-io/gohttpcore/internal/ws"
)

// Resource is the user-supplied handler closure bound to a route's leaf.
type Resource func(ctx context.Context, req *httpx.Request) (*httpx.Response, error)

// QueryMatcher pins a request query parameter to one of a fixed set of
// acceptable values (the spec's "map of {parameter-name -> matcher}";
// matchers here are value-set membership, the common case).
type QueryMatcher struct {
	Name   string
	Values []string
}

// Route is the combination of criteria bound to a resource. Two routes are
// indistinguishable iff all criteria are equal.
type Route struct {
	Path          string // exact path; mutually exclusive with PathPattern
	PathPattern   string // e.g. "/users/{id}/orders/{order:[0-9]+}"
	TrailingSlash bool   // when set, "/x" and "/x/" both match
	Method        string
	Consumes      []httpx.MediaType
	Produces      []httpx.MediaType
	Languages     []string
	QueryParams   []QueryMatcher
	Resource      Resource

	// WSHandler, when set, marks this route as a WebSocket endpoint: the
	// exchange engine completes the handshake itself and hands the
	// connection to WSHandler instead of invoking Resource.
	WSHandler ws.Handler
}

// HasPath reports whether the route constrains the path at all.
func (r Route) HasPath() bool { return r.Path != "" || r.PathPattern != "" }

// Input is the resolved request-derived data routing links match against.
type Input struct {
	Path           string
	Method         string
	ContentType    httpx.MediaType
	HasContentType bool
	Accept         []httpx.MediaType
	AcceptLanguage []httpx.LanguageRange
	Query          map[string][]string
}
