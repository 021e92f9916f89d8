// Package parser turns fetched pages into story links and story records.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/IshaanNene/storyspider/internal/types"
)

// FieldSeparator is the ledger field delimiter; extracted text must never contain it.
const FieldSeparator = "^"

// Fetcher retrieves pages for the parsers.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// cleanText removes the field separator and folds line breaks so a value
// always fits inside a single ledger field.
func cleanText(s string) string {
	return lineBreaks.Replace(strings.ReplaceAll(s, FieldSeparator, ""))
}

// bodyTag finds a literal <body> start tag. The HTML tokenizer synthesizes a
// body for any input, so the raw bytes are the only place a missing body shows.
var bodyTag = regexp.MustCompile(`(?i)<body[\s>/]`)

// hasBody reports whether page contains a <body> start tag.
func hasBody(page []byte) bool {
	return bodyTag.Match(page)
}

// checkPage rejects responses that are not HTML documents with a body.
func checkPage(pageURL string, resp *types.Response) error {
	if !resp.IsHTML() {
		return &types.ParseError{URL: pageURL, Err: fmt.Errorf("%w: %s", types.ErrNotHTML, resp.ContentType)}
	}
	if !hasBody(resp.Body) {
		return &types.ParseError{URL: pageURL, Selector: "body", Err: types.ErrNoBody}
	}
	return nil
}
