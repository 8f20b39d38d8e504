package httpx

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// LanguageRange is a single entry from an Accept-Language header: a BCP 47
// tag plus its declared quality weight.
type LanguageRange struct {
	Tag     language.Tag
	Quality float64
}

// ParseAcceptLanguage parses a full Accept-Language header value into its
// ranges, in wire order (not sorted by quality — the Accept-Language
// routing link does its own ranking against the route's declared locales).
func ParseAcceptLanguage(raw string) ([]LanguageRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []LanguageRange
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		tagPart := part
		quality := 1.0
		if semi := strings.IndexByte(part, ';'); semi >= 0 {
			tagPart = strings.TrimSpace(part[:semi])
			qPart := strings.TrimSpace(part[semi+1:])
			if strings.HasPrefix(qPart, "q=") {
				if q, err := strconv.ParseFloat(strings.TrimPrefix(qPart, "q="), 64); err == nil && q >= 0 && q <= 1 {
					quality = q
				}
			}
		}

		if tagPart == "*" {
			out = append(out, LanguageRange{Tag: language.Und, Quality: quality})
			continue
		}

		tag, err := language.Parse(tagPart)
		if err != nil {
			continue // skip unparsable ranges rather than failing the whole header
		}
		out = append(out, LanguageRange{Tag: tag, Quality: quality})
	}
	return out, nil
}

// BestMatch picks the offered tag with the highest-confidence match against
// ranges, preferring the highest declared quality among equally-confident
// matches. It returns false if ranges is empty or nothing matched.
func BestMatch(ranges []LanguageRange, offered []language.Tag) (language.Tag, bool) {
	if len(ranges) == 0 || len(offered) == 0 {
		return language.Und, false
	}

	tags := make([]language.Tag, len(ranges))
	for i, r := range ranges {
		tags[i] = r.Tag
	}
	matcher := language.NewMatcher(offered)

	best := language.Und
	bestQuality := -1.0
	bestConf := language.No
	for _, r := range ranges {
		_, idx, conf := matcher.Match(r.Tag)
		if conf == language.No {
			continue
		}
		if conf > bestConf || (conf == bestConf && r.Quality > bestQuality) {
			bestQuality = r.Quality
			bestConf = conf
			best = offered[idx]
		}
	}
	if bestQuality < 0 {
		return language.Und, false
	}
	return best, true
}
