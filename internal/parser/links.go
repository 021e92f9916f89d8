package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/storyspider/internal/types"
)

// StoryMatcher decides whether a link found on a seed page looks like a
// same-publisher story URL.
type StoryMatcher struct {
	labels  []string
	token   string
	pattern *regexp.Regexp
}

// NewStoryMatcher derives the publisher token (the last label of the seed
// host) and the story pattern from a seed URL. IP hosts, ports and IDNs are
// not treated specially.
func NewStoryMatcher(seedURL string) (*StoryMatcher, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}

	var labels []string
	for _, label := range strings.Split(strings.ToLower(u.Hostname()), ".") {
		if label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no host in %q", types.ErrInvalidURL, seedURL)
	}

	token := labels[len(labels)-1]
	pattern, err := regexp.Compile(`^(http|https)://.*` + regexp.QuoteMeta(token) + `[.\w\-]*/.+/?$`)
	if err != nil {
		return nil, fmt.Errorf("compile story pattern: %w", err)
	}

	return &StoryMatcher{labels: labels, token: token, pattern: pattern}, nil
}

// Token returns the publisher token.
func (m *StoryMatcher) Token() string { return m.token }

// Match reports whether link passes the story pattern, contains one of the
// seed host labels, and contains one of the filters (when any are given).
// link is expected to be lower-cased already.
func (m *StoryMatcher) Match(link string, filters []string) bool {
	if !m.pattern.MatchString(link) {
		return false
	}
	if !containsAny(link, m.labels) {
		return false
	}
	return len(filters) == 0 || containsAny(link, filters)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LinkDiscoverer extracts candidate story links from seed pages.
type LinkDiscoverer struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewLinkDiscoverer creates a LinkDiscoverer backed by f.
func NewLinkDiscoverer(f Fetcher, logger *slog.Logger) *LinkDiscoverer {
	return &LinkDiscoverer{
		fetcher: f,
		logger:  logger.With("component", "link_discovery"),
	}
}

// Discover fetches seedURL and returns, in document order, every anchor href
// (lower-cased) that the seed's StoryMatcher accepts. Any failure is logged
// and yields no links.
func (d *LinkDiscoverer) Discover(ctx context.Context, seedURL string, filters []string) []string {
	links, err := d.discover(ctx, seedURL, filters)
	if err != nil {
		d.logger.Error("link discovery failed", "url", seedURL, "error", err)
		return nil
	}
	d.logger.Debug("links discovered", "url", seedURL, "count", len(links))
	return links
}

func (d *LinkDiscoverer) discover(ctx context.Context, seedURL string, filters []string) ([]string, error) {
	matcher, err := NewStoryMatcher(seedURL)
	if err != nil {
		return nil, err
	}

	req, err := types.NewRequest(seedURL)
	if err != nil {
		return nil, err
	}
	req.Tag = types.TagSeed

	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: seedURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if resp.Redirected() {
		d.logger.Debug("seed redirected", "url", seedURL, "final_url", resp.FinalURL)
	}
	if err := checkPage(seedURL, resp); err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: seedURL, Err: err}
	}
	body := doc.Find("body")

	var links []string
	body.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := strings.ToLower(href)
		if matcher.Match(link, filters) {
			links = append(links, link)
		}
	})

	return links, nil
}
