package feed

import (
	"net/url"
	"strings"
)

// Site turns a page URL on a known host into that page's feed URL, so
// users can pass the address they see in a browser.
type Site interface {
	Name() string
	CanHandle(u *url.URL) bool
	FeedURL(u *url.URL) string
}

// Sites holds the registered Site rules; the first match wins.
type Sites struct {
	rules []Site
}

// DefaultSites knows subreddits and GitHub repositories.
func DefaultSites() *Sites {
	return &Sites{rules: []Site{redditSite{}, githubSite{}}}
}

func (s *Sites) Register(site Site) {
	s.rules = append(s.rules, site)
}

// Resolve returns the feed URL for raw and the name of the rule that
// rewrote it. URLs no rule handles come back unchanged with an empty name.
func (s *Sites) Resolve(raw string) (string, string) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, ""
	}
	for _, site := range s.rules {
		if site.CanHandle(u) {
			return site.FeedURL(u), site.Name()
		}
	}
	return raw, ""
}

func hostIs(u *url.URL, hosts ...string) bool {
	h := strings.ToLower(u.Hostname())
	for _, want := range hosts {
		if h == want {
			return true
		}
	}
	return false
}

func pathParts(u *url.URL) []string {
	return strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
}

type redditSite struct{}

func (redditSite) Name() string { return "reddit" }

func (redditSite) CanHandle(u *url.URL) bool {
	parts := pathParts(u)
	return hostIs(u, "reddit.com", "www.reddit.com", "old.reddit.com") &&
		len(parts) >= 2 && parts[0] == "r" && !strings.HasSuffix(u.Path, ".rss")
}

// FeedURL appends .rss to the subreddit path, which reddit serves as Atom.
func (redditSite) FeedURL(u *url.URL) string {
	out := *u
	out.Path = strings.TrimSuffix(u.Path, "/") + ".rss"
	return out.String()
}

type githubSite struct{}

func (githubSite) Name() string { return "github" }

func (githubSite) CanHandle(u *url.URL) bool {
	return hostIs(u, "github.com", "www.github.com") && len(pathParts(u)) == 2
}

// FeedURL points at the repository's release feed.
func (githubSite) FeedURL(u *url.URL) string {
	parts := pathParts(u)
	out := url.URL{Scheme: "https", Host: "github.com"}
	out.Path = "/" + parts[0] + "/" + strings.TrimSuffix(parts[1], ".git") + "/releases.atom"
	return out.String()
}
