package httpx

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaType is a parsed "type/subtype;param=value;..." value. Parameters
// keep their wire order so re-serialization round-trips (charset and
// friends are never reordered).
type MediaType struct {
	Type    string
	Subtype string
	params  []mediaParam
}

type mediaParam struct {
	name  string
	value string
}

// ParseMediaType parses a single media-range as it appears in Content-Type
// or a single element of an Accept list (no q-weighted list splitting here;
// see ParseAcceptList for that).
func ParseMediaType(raw string) (MediaType, error) {
	parts := strings.Split(raw, ";")
	full := strings.TrimSpace(parts[0])
	slash := strings.IndexByte(full, '/')
	if slash <= 0 || slash == len(full)-1 {
		return MediaType{}, fmt.Errorf("httpx: invalid media type %q", raw)
	}

	mt := MediaType{
		Type:    strings.ToLower(strings.TrimSpace(full[:slash])),
		Subtype: strings.ToLower(strings.TrimSpace(full[slash+1:])),
	}

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		eq := strings.IndexByte(p, '=')
		if eq <= 0 {
			return MediaType{}, fmt.Errorf("httpx: invalid media type parameter %q", p)
		}
		name := strings.ToLower(strings.TrimSpace(p[:eq]))
		value := strings.Trim(strings.TrimSpace(p[eq+1:]), `"`)
		mt.params = append(mt.params, mediaParam{name: name, value: value})
	}
	return mt, nil
}

// Param returns the value of a named parameter (case-insensitive name) and
// whether it was present.
func (m MediaType) Param(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, p := range m.params {
		if p.name == name {
			return p.value, true
		}
	}
	return "", false
}

// Quality returns the "q" parameter's weight, defaulting to 1.0 when absent
// or unparsable.
func (m MediaType) Quality() float64 {
	v, ok := m.Param("q")
	if !ok {
		return 1.0
	}
	q, err := strconv.ParseFloat(v, 64)
	if err != nil || q < 0 || q > 1 {
		return 1.0
	}
	return q
}

// IsWildcardType reports whether Type is "*".
func (m MediaType) IsWildcardType() bool { return m.Type == "*" }

// IsWildcardSubtype reports whether Subtype is "*".
func (m MediaType) IsWildcardSubtype() bool { return m.Subtype == "*" }

// Matches reports whether m (typically a produced/consumed type) satisfies
// the range expressed by other (typically an Accept/Content-Type value from
// a request), honoring wildcards on either side.
func (m MediaType) Matches(other MediaType) bool {
	if !other.IsWildcardType() && !m.IsWildcardType() && m.Type != other.Type {
		return false
	}
	if !other.IsWildcardSubtype() && !m.IsWildcardSubtype() && m.Subtype != other.Subtype {
		return false
	}
	return true
}

// MoreSpecificThan reports whether m is a strictly more specific media
// range than other — used to rank candidate Produces/Consumes links so the
// most specific match wins ties (e.g. "text/html" over "text/*" over "*/*").
func (m MediaType) MoreSpecificThan(other MediaType) bool {
	mScore := specificity(m)
	oScore := specificity(other)
	if mScore != oScore {
		return mScore > oScore
	}
	return len(m.params) > len(other.params)
}

func specificity(m MediaType) int {
	switch {
	case m.Type == "*":
		return 0
	case m.Subtype == "*":
		return 1
	default:
		return 2
	}
}

// String reproduces the wire form, parameters in original order.
func (m MediaType) String() string {
	var b strings.Builder
	b.WriteString(m.Type)
	b.WriteByte('/')
	b.WriteString(m.Subtype)
	for _, p := range m.params {
		b.WriteByte(';')
		b.WriteString(p.name)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

// ParseAcceptList parses a comma-separated Accept (or similar) header value
// into individual MediaType ranges, preserving the header's original order
// (callers sort by Quality() themselves if a quality-ordered scan is
// needed — order here is wire order, matching Header's own ordering rule).
func ParseAcceptList(raw string) ([]MediaType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []MediaType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mt, err := ParseMediaType(part)
		if err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, nil
}
