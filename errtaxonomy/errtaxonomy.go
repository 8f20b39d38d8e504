// Package errtaxonomy defines the well-typed routing/protocol errors the
// exchange engine and router surface map onto HTTP status codes. Each
// variant carries the structured data needed to render the response
// (e.g. the Allow header for MethodNotAllowed) instead of collapsing to an
// opaque error string.
package errtaxonomy

import (
	"fmt"
	"strings"

	"github.com/inverno-io/gohttpcore/internal/httpx"
)

// RoutingError is implemented by every variant in this package so callers
// can type-switch or call StatusCode/ApplyHeaders uniformly.
type RoutingError interface {
	error
	StatusCode() int
	// ApplyHeaders sets any taxonomy-specific response headers (e.g. Allow).
	ApplyHeaders(h *httpx.Header)
}

// NotFound means no route matched the request at all.
type NotFound struct {
	Path string
}

func (e NotFound) Error() string           { return fmt.Sprintf("errtaxonomy: no route for %q", e.Path) }
func (e NotFound) StatusCode() int          { return 404 }
func (e NotFound) ApplyHeaders(*httpx.Header) {}

// MethodNotAllowed means a path matched but no child accepted the request
// method. Allowed lists the methods that would have matched.
type MethodNotAllowed struct {
	Path    string
	Allowed []string
}

func (e MethodNotAllowed) Error() string {
	return fmt.Sprintf("errtaxonomy: method not allowed for %q (allowed: %s)", e.Path, strings.Join(e.Allowed, ", "))
}
func (e MethodNotAllowed) StatusCode() int { return 405 }
func (e MethodNotAllowed) ApplyHeaders(h *httpx.Header) {
	h.Set("Allow", strings.Join(e.Allowed, ", "))
}

// UnsupportedMediaType means the request's Content-Type matched no
// Consumes link.
type UnsupportedMediaType struct {
	Path      string
	Supported []httpx.MediaType
}

func (e UnsupportedMediaType) Error() string {
	return fmt.Sprintf("errtaxonomy: unsupported media type for %q", e.Path)
}
func (e UnsupportedMediaType) StatusCode() int            { return 415 }
func (e UnsupportedMediaType) ApplyHeaders(*httpx.Header) {}

// NotAcceptable means the request's Accept header matched no Produces
// link.
type NotAcceptable struct {
	Path      string
	Available []httpx.MediaType
}

func (e NotAcceptable) Error() string {
	return fmt.Sprintf("errtaxonomy: not acceptable for %q", e.Path)
}
func (e NotAcceptable) StatusCode() int            { return 406 }
func (e NotAcceptable) ApplyHeaders(*httpx.Header) {}

// BadRequest means the input itself was malformed (e.g. a query-parameter
// matcher found an invalid value).
type BadRequest struct {
	Reason string
}

func (e BadRequest) Error() string           { return fmt.Sprintf("errtaxonomy: bad request: %s", e.Reason) }
func (e BadRequest) StatusCode() int          { return 400 }
func (e BadRequest) ApplyHeaders(*httpx.Header) {}

// StatusFor resolves the httpx.Status to respond with for any error
// implementing RoutingError, falling back to 500 for anything else.
func StatusFor(err error) httpx.Status {
	if re, ok := err.(RoutingError); ok {
		return httpx.StatusFor(re.StatusCode())
	}
	return httpx.StatusInternalError
}
