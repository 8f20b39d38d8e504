package routing

import (
	"regexp"
	"strings"
)

// pathPattern is a compiled "/users/{id}/orders/{order:[0-9]+}"-style
// template. Segments are compared positionally; param segments optionally
// carry a regex constraint.
type pathPattern struct {
	raw      string
	segments []patternSegment
}

type patternSegment struct {
	literal    string
	isParam    bool
	paramName  string
	constraint *regexp.Regexp
}

func compilePattern(raw string) pathPattern {
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	segs := make([]patternSegment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			inner := p[1 : len(p)-1]
			name := inner
			var re *regexp.Regexp
			if colon := strings.IndexByte(inner, ':'); colon >= 0 {
				name = inner[:colon]
				if compiled, err := regexp.Compile("^" + inner[colon+1:] + "$"); err == nil {
					re = compiled
				}
			}
			segs = append(segs, patternSegment{isParam: true, paramName: name, constraint: re})
		} else {
			segs = append(segs, patternSegment{literal: p})
		}
	}
	return pathPattern{raw: raw, segments: segs}
}

// match reports whether path satisfies the pattern, returning the
// extracted path parameters on success.
func (p pathPattern) match(path string) (map[string]string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != len(p.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range p.segments {
		v := parts[i]
		if !seg.isParam {
			if seg.literal != v {
				return nil, false
			}
			continue
		}
		if seg.constraint != nil && !seg.constraint.MatchString(v) {
			return nil, false
		}
		params[seg.paramName] = v
	}
	return params, true
}

// specificity scores a pattern so more specific patterns are tried first:
// literal segments count most, constrained params next, unconstrained
// params least. Longer literal prefixes therefore outrank shorter ones
// since they accumulate more literal-segment weight.
func (p pathPattern) specificity() int {
	score := 0
	for _, seg := range p.segments {
		switch {
		case !seg.isParam:
			score += 100
		case seg.constraint != nil:
			score += 10
		default:
			score += 1
		}
	}
	return score
}
