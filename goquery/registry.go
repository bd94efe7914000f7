package goquery

import "github.com/fwojciec/clipnote"

// Registry maps sites to the CSS selectors of their article body. It uses
// a SiteDetector to identify the site of a page and falls back to a
// generic selector list when the site is unknown or has no entry.
type Registry struct {
	detector  clipnote.SiteDetector
	fallback  []string
	selectors map[clipnote.Site][]string
}

// NewRegistry creates an empty Registry with the given detector and fallback selectors.
func NewRegistry(detector clipnote.SiteDetector, fallback []string) *Registry {
	return &Registry{
		detector:  detector,
		fallback:  fallback,
		selectors: make(map[clipnote.Site][]string),
	}
}

// NewDefaultRegistry returns a Registry populated with the built-in site
// selectors, using the built-in Detector.
func NewDefaultRegistry() *Registry {
	return NewSiteRegistry(NewDetector())
}

// NewSiteRegistry returns a Registry populated with the built-in site
// selectors that identifies sites with detector.
func NewSiteRegistry(detector clipnote.SiteDetector) *Registry {
	r := NewRegistry(detector, GenericSiteSelectors)
	for site, sels := range SiteSelectors {
		r.Register(site, sels)
	}
	return r
}

// Get returns the selectors for a site, or nil if none are registered.
func (r *Registry) Get(site clipnote.Site) []string {
	return r.selectors[site]
}

// SelectorsFor detects the site of a page and returns its selectors,
// or the fallback list.
func (r *Registry) SelectorsFor(pageURL, html string) []string {
	site := r.detector.Detect(pageURL, html)
	if sels, ok := r.selectors[site]; ok {
		return sels
	}
	return r.fallback
}

// Register sets the selectors for a site, replacing any previous entry.
func (r *Registry) Register(site clipnote.Site, selectors []string) {
	r.selectors[site] = selectors
}

// List returns all registered sites.
func (r *Registry) List() []clipnote.Site {
	sites := make([]clipnote.Site, 0, len(r.selectors))
	for s := range r.selectors {
		sites = append(sites, s)
	}
	return sites
}
