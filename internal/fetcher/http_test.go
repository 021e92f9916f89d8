package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/storyspider/internal/config"
	"github.com/IshaanNene/storyspider/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func mustRequest(t *testing.T, rawURL string) *types.Request {
	t.Helper()
	req, err := types.NewRequest(rawURL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func TestHTTPFetcherOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html><body>ok</body></html>" {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.ContentType != "text/html" || !resp.IsHTML() {
		t.Errorf("unexpected content type %q", resp.ContentType)
	}
	if resp.Redirected() {
		t.Errorf("unexpected redirect to %q", resp.FinalURL)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", fe.StatusCode)
	}
}

func TestHTTPFetcherGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, "compressed story")
		gz.Close()
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "compressed story" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestHTTPFetcherBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		io.WriteString(bw, "brotli story")
		bw.Close()
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "brotli story" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := config.DefaultConfig()
	cfg.Fetcher.RequestTimeout = 50 * time.Millisecond
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.Fetch(context.Background(), mustRequest(t, srv.URL)); err == nil {
		t.Error("expected timeout error")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		fetcherType string
		wantType    string
		wantErr     bool
	}{
		{fetcherType: "", wantType: "http"},
		{fetcherType: "http", wantType: "http"},
		{fetcherType: "gopher", wantErr: true},
		{fetcherType: "HTTP", wantErr: true},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.Fetcher.Type = tt.fetcherType
		f, err := New(cfg, testLogger)
		if tt.wantErr {
			if err == nil {
				f.Close()
				t.Errorf("%q: expected error", tt.fetcherType)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.fetcherType, err)
			continue
		}
		if f.Type() != tt.wantType {
			t.Errorf("%q: expected %s fetcher, got %s", tt.fetcherType, tt.wantType, f.Type())
		}
		f.Close()
	}
}

func TestHTTPFetcherRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL+"/old"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !resp.Redirected() || resp.FinalURL != srv.URL+"/new" {
		t.Errorf("expected redirect to /new, got %q", resp.FinalURL)
	}
	if resp.IsHTML() {
		t.Errorf("content type %q should not count as HTML", resp.ContentType)
	}
}

func TestHTTPFetcherRedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fetcher.FollowRedirects = false
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	resp, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.StatusCode != http.StatusFound || resp.IsSuccess() {
		t.Errorf("expected unfollowed 302, got %d", resp.StatusCode)
	}
}
