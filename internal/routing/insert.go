package routing

// Root is the entry point of a routing chain: an opaque handle around the
// unexported link tree so callers outside this package (the router
// surface) can build and resolve against it without reaching into the
// tagged-variant node type itself.
type Root struct{ n *node }

// NewRoot creates an empty routing chain.
func NewRoot() Root {
	return Root{n: newNode(kindPath, nil)}
}

// Handle identifies one route's terminal link, letting the router surface
// enable, disable, or unpublish it without re-walking the chain.
type Handle struct{ n *node }

// Enable re-activates a previously disabled route.
func (h Handle) Enable() { h.n.disabled = false }

// Disable makes the route invisible to Resolve without removing its link
// from the tree (cheap toggle; the link is reused if the route returns).
func (h Handle) Disable() { h.n.disabled = true }

// Remove unpublishes the route's resource entirely. The tree links
// themselves are left in place rather than pruned — an empty terminal
// costs one allocation and is indistinguishable from "never inserted" to
// Resolve, which is the simplification the router surface relies on.
func (h Handle) Remove() {
	h.n.resource = nil
	h.n.route = nil
	h.n.disabled = true
}

// Route returns the route bound to this handle.
func (h Handle) Route() Route {
	if h.n.route != nil {
		return *h.n.route
	}
	return Route{}
}

// Insert threads a route through the fixed link-kind chain — path, method,
// consumes, produces, language, query-parameters, terminal — creating any
// missing links along the way and binding the route's resource at the
// terminal node.
func Insert(root Root, r Route) Handle {
	n := root.n.getOrCreateLink(&r, kindMethod)
	n = n.getOrCreateLink(&r, kindConsumes)
	n = n.getOrCreateLink(&r, kindProduces)
	n = n.getOrCreateLink(&r, kindLanguage)
	n = n.getOrCreateLink(&r, kindQueryParam)
	n = n.getOrCreateLink(&r, kindTerminal)
	rc := r
	n.resource = r.Resource
	n.route = &rc
	n.disabled = false
	return Handle{n: n}
}
