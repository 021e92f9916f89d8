package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/storyspider/internal/types"
)

// ContentExtractor pulls the title and paragraph text out of story pages.
type ContentExtractor struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewContentExtractor creates a ContentExtractor backed by f.
func NewContentExtractor(f Fetcher, logger *slog.Logger) *ContentExtractor {
	return &ContentExtractor{
		fetcher: f,
		logger:  logger.With("component", "content_extractor"),
	}
}

// Extract fetches storyURL and returns its record, or nil when the page
// could not be fetched or parsed. Failures are logged, never returned.
func (e *ContentExtractor) Extract(ctx context.Context, storyURL string) *types.Record {
	rec, err := e.extract(ctx, storyURL)
	if err != nil {
		e.logger.Error("extraction failed", "url", storyURL, "error", err)
		return nil
	}
	return rec
}

func (e *ContentExtractor) extract(ctx context.Context, storyURL string) (*types.Record, error) {
	req, err := types.NewRequest(storyURL)
	if err != nil {
		return nil, err
	}
	req.Tag = types.TagStory

	resp, err := e.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Redirected() {
		e.logger.Debug("story redirected", "url", storyURL, "final_url", resp.FinalURL)
	}
	if !resp.IsHTML() {
		return nil, &types.ParseError{URL: storyURL, Err: fmt.Errorf("%w: %s", types.ErrNotHTML, resp.ContentType)}
	}
	return ParseStory(storyURL, resp.Body)
}

// ParseStory extracts a record from a story page. The body text is the
// single-string content of every <p> and then every <span> under <body>,
// each trimmed and followed by one space. A page without a <body> tag is
// rejected with types.ErrNoBody.
func ParseStory(storyURL string, page []byte) (*types.Record, error) {
	if !hasBody(page) {
		return nil, &types.ParseError{URL: storyURL, Selector: "body", Err: types.ErrNoBody}
	}

	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, &types.ParseError{URL: storyURL, Err: err}
	}

	var title string
	if node := htmlquery.FindOne(doc, "//title"); node != nil {
		title = strings.Join(strings.Fields(htmlquery.InnerText(node)), " ")
	}

	body := htmlquery.FindOne(doc, "//body")
	if body == nil {
		return nil, &types.ParseError{URL: storyURL, Selector: "//body", Err: types.ErrNoBody}
	}

	var text strings.Builder
	for _, expr := range []string{".//p", ".//span"} {
		nodes, err := htmlquery.QueryAll(body, expr)
		if err != nil {
			return nil, &types.ParseError{URL: storyURL, Selector: expr, Err: err}
		}
		for _, n := range nodes {
			s, ok := singleString(n)
			if !ok {
				continue
			}
			text.WriteString(strings.TrimSpace(s))
			text.WriteByte(' ')
		}
	}

	return types.NewRecord(storyURL, cleanText(title), cleanText(text.String())), nil
}

// singleString returns the text of n when n has exactly one child and that
// child is a text node or itself reduces to a single string.
func singleString(n *html.Node) (string, bool) {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil {
		return "", false
	}
	switch c.Type {
	case html.TextNode:
		return c.Data, true
	case html.ElementNode:
		return singleString(c)
	default:
		return "", false
	}
}
