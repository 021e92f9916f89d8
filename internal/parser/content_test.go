package parser

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/IshaanNene/storyspider/internal/types"
)

const storyHTML = `<!DOCTYPE html>
<html>
<head><title>Markets rally</title></head>
<body>
  <h1>Markets rally</h1>
  <p>  Stocks rose on Monday.  </p>
  <p>Analysts <b>disagree</b> on why.</p>
  <p><em>Bonds ^ fell.</em></p>
  <div><span>Reporter: A. Writer</span></div>
  <span>Line one
line two</span>
</body>
</html>`

func TestParseStory(t *testing.T) {
	rec, err := ParseStory("http://news.example/a/1", []byte(storyHTML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.URL != "http://news.example/a/1" {
		t.Errorf("unexpected URL %q", rec.URL)
	}
	if rec.Title != "Markets rally" {
		t.Errorf("unexpected title %q", rec.Title)
	}
	want := "Stocks rose on Monday. Bonds  fell. Reporter: A. Writer Line one line two "
	if rec.Body != want {
		t.Errorf("body mismatch:\n got %q\nwant %q", rec.Body, want)
	}
}

func TestParseStoryMissingTitleAndParagraphs(t *testing.T) {
	rec, err := ParseStory("http://news.example/a/2", []byte(`<html><body><div>nothing</div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Title != "" || rec.Body != "" {
		t.Errorf("expected empty fields, got %+v", rec)
	}
}

func TestParseStorySingleParagraph(t *testing.T) {
	rec, err := ParseStory("http://a/b", []byte(`<html><head><title>T</title></head><body><p>B</p></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Title != "T" || rec.Body != "B " {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestExtractFetchErrorReturnsNil(t *testing.T) {
	f := &stubFetcher{}
	e := NewContentExtractor(f, testLogger)
	if rec := e.Extract(context.Background(), "http://news.example/missing"); rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
	if len(f.requests) != 1 || f.requests[0].Tag != types.TagStory {
		t.Errorf("expected one story request, got %+v", f.requests)
	}
}

func TestExtractInvalidURLReturnsNil(t *testing.T) {
	e := NewContentExtractor(&stubFetcher{}, testLogger)
	if rec := e.Extract(context.Background(), "::not-a-url"); rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestExtractSuccess(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"http://news.example/a/1": storyHTML}}
	e := NewContentExtractor(f, testLogger)
	rec := e.Extract(context.Background(), "http://news.example/a/1")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "Markets rally" {
		t.Errorf("unexpected title %q", rec.Title)
	}
}

func TestParseStoryWithoutBody(t *testing.T) {
	pages := map[string]string{
		"plain text": "plain text, not html",
		"json":       `{"json":true}`,
		"png":        "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"no body":    `<html><p>x</p></html>`,
		"empty":      "",
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			rec, err := ParseStory("http://news.example/a/1", []byte(page))
			if !errors.Is(err, types.ErrNoBody) {
				t.Errorf("expected ErrNoBody, got %v", err)
			}
			if rec != nil {
				t.Errorf("expected no record, got %+v", rec)
			}
		})
	}
}

func TestParseStoryBodyTagVariants(t *testing.T) {
	for _, page := range []string{
		`<HTML><BODY><P>x</P></BODY></HTML>`,
		`<html><body class="article"><p>x</p></body></html>`,
		"<html><body\n><p>x</p></body></html>",
	} {
		rec, err := ParseStory("http://news.example/a/1", []byte(page))
		if err != nil {
			t.Errorf("%q: unexpected error %v", page, err)
			continue
		}
		if rec.Body != "x " {
			t.Errorf("%q: unexpected body %q", page, rec.Body)
		}
	}
}

func TestExtractRejectsNonHTML(t *testing.T) {
	const storyURL = "http://news.example/a/1"
	for _, contentType := range []string{"application/json", "image/png", "text/plain; charset=utf-8"} {
		f := &stubFetcher{responses: map[string]*types.Response{
			storyURL: {StatusCode: http.StatusOK, ContentType: contentType, Body: []byte(storyHTML), FinalURL: storyURL},
		}}
		e := NewContentExtractor(f, testLogger)
		if rec := e.Extract(context.Background(), storyURL); rec != nil {
			t.Errorf("%s: expected nil record, got %+v", contentType, rec)
		}
	}
}

func TestExtractAcceptsHTMLContentTypes(t *testing.T) {
	const storyURL = "http://news.example/a/1"
	for _, contentType := range []string{"", "text/html", "TEXT/HTML; charset=ISO-8859-1", "application/xhtml+xml"} {
		f := &stubFetcher{responses: map[string]*types.Response{
			storyURL: {StatusCode: http.StatusOK, ContentType: contentType, Body: []byte(storyHTML), FinalURL: "http://news.example/a/1?redirected=1"},
		}}
		e := NewContentExtractor(f, testLogger)
		if rec := e.Extract(context.Background(), storyURL); rec == nil {
			t.Errorf("%q: expected a record", contentType)
		}
	}
}

func TestExtractNoBodyReturnsNil(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"http://news.example/a/1": "plain text, not html"}}
	e := NewContentExtractor(f, testLogger)
	if rec := e.Extract(context.Background(), "http://news.example/a/1"); rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}
