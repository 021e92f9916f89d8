package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/IshaanNene/storyspider/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubFetcher serves canned pages keyed by URL. Entries in responses are
// returned as-is, for status codes and content types other than 200 HTML.
type stubFetcher struct {
	pages     map[string]string
	responses map[string]*types.Response
	requests  []*types.Request
}

func (f *stubFetcher) Fetch(_ context.Context, req *types.Request) (*types.Response, error) {
	f.requests = append(f.requests, req)
	if resp, ok := f.responses[req.URLString()]; ok {
		resp.Request = req
		return resp, nil
	}
	page, ok := f.pages[req.URLString()]
	if !ok {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: http.StatusNotFound, Err: errors.New("not found")}
	}
	return &types.Response{
		StatusCode:  http.StatusOK,
		Body:        []byte(page),
		Request:     req,
		ContentType: "text/html",
		FinalURL:    req.URLString(),
	}, nil
}
