package routing

import (
	"sort"
	"strings"

	"github.com/inverno-io/gohttpcore/internal/httpx"
)

type kind int

const (
	kindPath kind = iota
	kindMethod
	kindConsumes
	kindProduces
	kindLanguage
	kindQueryParam
	kindTerminal
)

// node is the single tagged link type backing the whole chain: one
// criterion's matching rule per kind, dispatched by the insert/resolve
// functions below rather than by a six-interface class hierarchy.
type node struct {
	kind   kind
	parent *node // non-owning back-reference; resolution does not read it, never used for ownership

	exact map[string]*node // path-exact / method / language-exact children

	ranked []*rankedEntry // consumes / produces / path-pattern children, kept sorted by specificity

	queryChildren []*queryEntry // query-parameter children

	defaultNext *node // handles routes that don't constrain this criterion

	disabled bool
	resource Resource
	route    *Route // set only on terminal nodes; nil elsewhere
}

type rankedEntry struct {
	node      *node
	mediaType httpx.MediaType
	pattern   pathPattern
	order     int
}

// queryEntry holds one child's full set of query-parameter matchers — the
// spec's "each child defines a map of {parameter-name -> matcher}" means
// one link level suffices; the child's combination of matchers (not a
// single parameter) is the key.
type queryEntry struct {
	node     *node
	matchers []QueryMatcher
	order    int
}

func newNode(k kind, parent *node) *node {
	return &node{kind: k, parent: parent}
}

// canLink reports whether this link's criterion is set on the route.
func (n *node) canLink(r *Route) bool {
	switch n.kind {
	case kindPath:
		return r.HasPath()
	case kindMethod:
		return r.Method != ""
	case kindConsumes:
		return len(r.Consumes) > 0
	case kindProduces:
		return len(r.Produces) > 0
	case kindLanguage:
		return len(r.Languages) > 0
	case kindQueryParam:
		return len(r.QueryParams) > 0
	default:
		return false
	}
}

// getOrCreateLink returns the child matching the route's criterion value
// at this link's kind, creating it when absent; a route that does not set
// this criterion goes to defaultNext. A query-parameter link keys one child
// by the route's whole set of matchers, not one level per parameter.
func (n *node) getOrCreateLink(r *Route, nextKind kind) *node {
	if !n.canLink(r) {
		if n.defaultNext == nil {
			n.defaultNext = newNode(nextKind, n)
		}
		return n.defaultNext
	}

	switch n.kind {
	case kindPath:
		return n.getOrCreatePathChild(r, nextKind)
	case kindMethod:
		return n.getOrCreateExactChild(r.Method, nextKind)
	case kindLanguage:
		return n.getOrCreateLanguageChild(r, nextKind)
	case kindConsumes:
		return n.getOrCreateMediaChild(r.Consumes, nextKind)
	case kindProduces:
		return n.getOrCreateMediaChild(r.Produces, nextKind)
	case kindQueryParam:
		return n.getOrCreateQueryChild(r.QueryParams, nextKind)
	default:
		return n
	}
}

func (n *node) getOrCreateExactChild(value string, nextKind kind) *node {
	if n.exact == nil {
		n.exact = map[string]*node{}
	}
	c, ok := n.exact[value]
	if !ok {
		c = newNode(nextKind, n)
		n.exact[value] = c
	}
	return c
}

func (n *node) getOrCreatePathChild(r *Route, nextKind kind) *node {
	if r.Path != "" {
		key := normalizePath(r.Path)
		c := n.getOrCreateExactChild(key, nextKind)
		if r.TrailingSlash {
			if alt := toggleTrailingSlash(key); alt != key {
				if _, exists := n.exact[alt]; !exists {
					n.exact[alt] = c
				}
			}
		}
		return c
	}
	// path pattern
	pat := compilePattern(r.PathPattern)
	for _, e := range n.ranked {
		if e.pattern.raw == pat.raw {
			return e.node
		}
	}
	c := newNode(nextKind, n)
	n.ranked = append(n.ranked, &rankedEntry{node: c, pattern: pat, order: len(n.ranked)})
	n.resortRanked()
	return c
}

func (n *node) getOrCreateLanguageChild(r *Route, nextKind kind) *node {
	// Only the first declared language establishes this link level; any
	// further entries in r.Languages create no link and are not matched.
	key := strings.ToLower(r.Languages[0])
	return n.getOrCreateExactChild(key, nextKind)
}

func (n *node) getOrCreateMediaChild(candidates []httpx.MediaType, nextKind kind) *node {
	mt := candidates[0]
	key := mt.String()
	for _, e := range n.ranked {
		if e.mediaType.String() == key {
			return e.node
		}
	}
	c := newNode(nextKind, n)
	n.ranked = append(n.ranked, &rankedEntry{node: c, mediaType: mt, order: len(n.ranked)})
	n.resortRanked()
	return c
}

func (n *node) getOrCreateQueryChild(matchers []QueryMatcher, nextKind kind) *node {
	for _, e := range n.queryChildren {
		if sameMatchers(e.matchers, matchers) {
			return e.node
		}
	}
	c := newNode(nextKind, n)
	n.queryChildren = append(n.queryChildren, &queryEntry{node: c, matchers: matchers, order: len(n.queryChildren)})
	n.sortQueryChildren()
	return c
}

func sameMatchers(a, b []QueryMatcher) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !sameValues(a[i].Values, b[i].Values) {
			return false
		}
	}
	return true
}

func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resortRanked keeps consumes/produces/path-pattern children ordered
// best-to-worst: path patterns by specificity, media types by
// more-specific-wins (ties broken by declared quality then declaration
// order, matching the Produces rule; Consumes ignores quality).
func (n *node) resortRanked() {
	sort.SliceStable(n.ranked, func(i, j int) bool {
		a, b := n.ranked[i], n.ranked[j]
		if n.kind == kindPath {
			return a.pattern.specificity() > b.pattern.specificity()
		}
		if a.mediaType.MoreSpecificThan(b.mediaType) {
			return true
		}
		if b.mediaType.MoreSpecificThan(a.mediaType) {
			return false
		}
		if n.kind == kindProduces && a.mediaType.Quality() != b.mediaType.Quality() {
			return a.mediaType.Quality() > b.mediaType.Quality()
		}
		return a.order < b.order
	})
}

// sortQueryChildren orders query-parameter children by constraint count
// descending (number of named parameters, then total accepted values) so
// more-constrained matches win.
func (n *node) sortQueryChildren() {
	sort.SliceStable(n.queryChildren, func(i, j int) bool {
		a, b := n.queryChildren[i], n.queryChildren[j]
		if len(a.matchers) != len(b.matchers) {
			return len(a.matchers) > len(b.matchers)
		}
		av, bv := totalValues(a.matchers), totalValues(b.matchers)
		if av != bv {
			return av > bv
		}
		return a.order < b.order
	})
}

func totalValues(matchers []QueryMatcher) int {
	n := 0
	for _, m := range matchers {
		n += len(m.Values)
	}
	return n
}

// refreshEnabled rebuilds any fast-path structures after a mutation. Nodes
// here check `disabled` directly at resolve time (cheap enough not to
// need a separate cache); this remains a named operation for parity with
// the documented chain contract and as an extension point.
func (n *node) refreshEnabled() {}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	trailingSlash := len(p) > 1 && strings.HasSuffix(p, "/")

	// Collapse dot-segments and redundant slashes; percent-decoding is
	// applied by httpx.ParseRequestURI before routing ever sees the path.
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, s)
		}
	}
	res := "/" + strings.Join(out, "/")
	if trailingSlash && res != "/" {
		res += "/"
	}
	return res
}

func toggleTrailingSlash(p string) string {
	if p == "/" {
		return p
	}
	if strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	return p + "/"
}
