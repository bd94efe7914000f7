// Package bloom remembers which page URLs have already been queued.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// URLSet is a probabilistic set of page URLs. A URL that was added is
// always reported as seen; a new URL is reported as seen with roughly the
// configured false positive rate.
type URLSet struct {
	f *bloom.BloomFilter
}

// NewURLSet creates a set sized for n URLs at the given false positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// Seen adds u and reports whether an equivalent URL was added before.
func (s *URLSet) Seen(u string) bool {
	return s.f.TestAndAddString(Key(u))
}

// Contains reports whether an equivalent URL was added, without adding u.
func (s *URLSet) Contains(u string) bool {
	return s.f.TestString(Key(u))
}

// Len returns the approximate number of URLs in the set.
func (s *URLSet) Len() uint {
	return uint(s.f.ApproximatedSize())
}

// Key returns the form under which u is stored. Scheme and host are
// lowercased, default ports and the fragment are dropped. Strings that do
// not parse as absolute URLs are only trimmed.
func Key(u string) string {
	u = strings.TrimSpace(u)
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return u
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Hostname())
	port := parsed.Port()
	if (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	parsed.Host = host
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}
