package types

import (
	"bytes"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Response is a fetched page.
type Response struct {
	// StatusCode is the HTTP status code, 200 for rendered browser pages.
	StatusCode int

	// Body is the raw (decoded) response body.
	Body []byte

	// Request is the request that produced this response.
	Request *Request

	// ContentType is the Content-Type header value, empty when the server sent none.
	ContentType string

	// FinalURL is the URL after any redirects.
	FinalURL string

	doc *goquery.Document
}

// NewResponse creates a Response for req.
func NewResponse(req *Request, statusCode int, contentType string, body []byte, finalURL string) *Response {
	return &Response{
		StatusCode:  statusCode,
		Body:        body,
		Request:     req,
		ContentType: contentType,
		FinalURL:    finalURL,
	}
}

// Document returns a parsed goquery document, lazily initializing it.
func (r *Response) Document() (*goquery.Document, error) {
	if r.doc != nil {
		return r.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	r.doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsHTML reports whether the declared media type is an HTML document type.
// A missing Content-Type counts as HTML.
func (r *Response) IsHTML() bool {
	if r.ContentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(r.ContentType, ";")[0]))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Redirected reports whether the page was served from a different URL
// than the one requested.
func (r *Response) Redirected() bool {
	return r.Request != nil && r.FinalURL != "" && r.FinalURL != r.Request.URLString()
}
