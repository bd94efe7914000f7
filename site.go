package clipnote

import "context"

// Site identifies a publishing platform with a known page layout.
type Site string

// Known sites.
const (
	SiteUnknown   Site = ""
	SiteWeChat    Site = "wechat"
	SiteZhihu     Site = "zhihu"
	SiteJuejin    Site = "juejin"
	SiteCSDN      Site = "csdn"
	SiteJianshu   Site = "jianshu"
	SiteMedium    Site = "medium"
	SiteSubstack  Site = "substack"
	SiteWordPress Site = "wordpress"
	SiteGhost     Site = "ghost"
	SiteGitHub    Site = "github"
)

// SiteDetector identifies the publishing platform of a page.
type SiteDetector interface {
	// Detect analyzes the page URL and HTML and returns the identified site.
	// Returns SiteUnknown if the site cannot be determined.
	Detect(pageURL, html string) Site
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
