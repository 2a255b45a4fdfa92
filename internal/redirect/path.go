package redirect

import "strings"

// ShortIDFromPath strips every leading slash from a request path.
// "/abc" and "//abc" both yield "abc"; "/" yields "".
func ShortIDFromPath(path string) string {
	return strings.TrimLeft(path, "/")
}

// NormalizeCountry uppercases a viewer country header value so it matches
// the keys of Record.Destinations.
func NormalizeCountry(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// StaticAssets is a set of path suffixes answered with 204 before any store
// lookup, e.g. browser favicon probes.
type StaticAssets []string

func NewStaticAssets(suffixes []string) StaticAssets {
	out := make(StaticAssets, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s StaticAssets) Match(path string) bool {
	for _, suffix := range s {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
