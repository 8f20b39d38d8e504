package routing

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/inverno-io/gohttpcore/errtaxonomy"
	"github.com/inverno-io/gohttpcore/internal/httpx"
)

// Resolve walks the chain from root, matching each link's criterion against
// in, and returns the terminal node's resource. Failure at any link produces
// the well-typed errtaxonomy error for that criterion; a path match that
// dead-ends with no matching method is reported as MethodNotAllowed rather
// than NotFound, and so on down the chain.
func Resolve(root Root, in Input) (Resource, error) {
	rt, err := ResolveRoute(root, in)
	if err != nil {
		return nil, err
	}
	return rt.Resource, nil
}

// ResolveRoute is Resolve's wider sibling: it returns the full matched
// Route rather than just its Resource, so callers that need route-level
// metadata not exposed through Resource (the WebSocket handler bound to
// a route, its declared path/method) can get at it without re-walking
// the chain.
func ResolveRoute(root Root, in Input) (Route, error) {
	n, err := matchPath(root.n, in.Path)
	if err != nil {
		return Route{}, err
	}
	n, err = matchMethod(n, in.Method)
	if err != nil {
		return Route{}, err
	}
	n, err = matchConsumes(n, in)
	if err != nil {
		return Route{}, err
	}
	n, err = matchProduces(n, in)
	if err != nil {
		return Route{}, err
	}
	n, err = matchLanguage(n, in.AcceptLanguage)
	if err != nil {
		return Route{}, err
	}
	n, err = matchQuery(n, in.Query)
	if err != nil {
		return Route{}, err
	}
	if n.disabled || n.route == nil {
		return Route{}, errtaxonomy.NotFound{Path: in.Path}
	}
	return *n.route, nil
}

func matchPath(root *node, path string) (*node, error) {
	key := normalizePath(path)
	if c, ok := root.exact[key]; ok && !c.disabled {
		return c, nil
	}
	for _, e := range root.ranked {
		if _, ok := e.pattern.match(path); ok && !e.node.disabled {
			return e.node, nil
		}
	}
	if root.defaultNext != nil {
		return root.defaultNext, nil
	}
	return nil, errtaxonomy.NotFound{Path: path}
}

func matchMethod(n *node, method string) (*node, error) {
	if c, ok := n.exact[method]; ok {
		return c, nil
	}
	if n.defaultNext != nil {
		return n.defaultNext, nil
	}
	allowed := make([]string, 0, len(n.exact))
	for m := range n.exact {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	return nil, errtaxonomy.MethodNotAllowed{Allowed: allowed}
}

func matchConsumes(n *node, in Input) (*node, error) {
	if in.HasContentType {
		for _, e := range n.ranked {
			if e.mediaType.Matches(in.ContentType) {
				return e.node, nil
			}
		}
	}
	if n.defaultNext != nil {
		return n.defaultNext, nil
	}
	if len(n.ranked) == 0 {
		return n, nil
	}
	supported := make([]httpx.MediaType, 0, len(n.ranked))
	for _, e := range n.ranked {
		supported = append(supported, e.mediaType)
	}
	return nil, errtaxonomy.UnsupportedMediaType{Supported: supported}
}

func matchProduces(n *node, in Input) (*node, error) {
	if len(n.ranked) == 0 {
		if n.defaultNext != nil {
			return n.defaultNext, nil
		}
		return n, nil
	}
	if len(in.Accept) == 0 {
		return n.ranked[0].node, nil
	}
	for _, e := range n.ranked {
		for _, a := range in.Accept {
			if a.Quality() > 0 && e.mediaType.Matches(a) {
				return e.node, nil
			}
		}
	}
	if n.defaultNext != nil {
		return n.defaultNext, nil
	}
	available := make([]httpx.MediaType, 0, len(n.ranked))
	for _, e := range n.ranked {
		available = append(available, e.mediaType)
	}
	return nil, errtaxonomy.NotAcceptable{Available: available}
}

func matchLanguage(n *node, ranges []httpx.LanguageRange) (*node, error) {
	if len(n.exact) == 0 {
		if n.defaultNext != nil {
			return n.defaultNext, nil
		}
		return n, nil
	}
	if len(ranges) == 0 {
		if n.defaultNext != nil {
			return n.defaultNext, nil
		}
		// No preference declared: any declared locale will do, pick
		// deterministically by sorted key.
		keys := make([]string, 0, len(n.exact))
		for k := range n.exact {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return n.exact[keys[0]], nil
	}

	keys := make([]string, 0, len(n.exact))
	offered := make([]language.Tag, 0, len(n.exact))
	for k := range n.exact {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		keys = append(keys, k)
		offered = append(offered, tag)
	}
	if best, ok := httpx.BestMatch(ranges, offered); ok {
		if c, ok := n.exact[strings.ToLower(best.String())]; ok {
			return c, nil
		}
	}
	if n.defaultNext != nil {
		return n.defaultNext, nil
	}
	return nil, errtaxonomy.NotAcceptable{}
}

func matchQuery(n *node, query map[string][]string) (*node, error) {
	for _, e := range n.queryChildren {
		if queryEntryMatches(e, query) {
			return e.node, nil
		}
	}
	if n.defaultNext != nil {
		return n.defaultNext, nil
	}
	if len(n.queryChildren) == 0 {
		return n, nil
	}
	return nil, errtaxonomy.NotFound{}
}

func queryEntryMatches(e *queryEntry, query map[string][]string) bool {
	for _, m := range e.matchers {
		values, ok := query[m.Name]
		if !ok {
			return false
		}
		if !anyValueAccepted(values, m.Values) {
			return false
		}
	}
	return true
}

func anyValueAccepted(values, accepted []string) bool {
	for _, v := range values {
		for _, a := range accepted {
			if v == a {
				return true
			}
		}
	}
	return false
}
