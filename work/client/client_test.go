package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livetv-scraper/work/config"
)

func testConfig() *config.Config {
	return &config.Config{
		UserAgent:         "test-agent/1.0",
		FetchTimeout:      5 * time.Second,
		RequestsPerSecond: 100,
	}
}

func TestFetch(t *testing.T) {
	var gotUA, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	bc := New(testConfig())
	body, err := bc.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	// compressed bodies would break the regex detectors downstream
	if gotEncoding != "identity" {
		t.Errorf("accept-encoding = %q, want identity", gotEncoding)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	bc := New(testConfig())
	_, err := bc.Fetch(context.Background(), srv.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", netErr.StatusCode)
	}
	if netErr.URL != srv.URL {
		t.Errorf("url = %q, want %q", netErr.URL, srv.URL)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bc := New(testConfig())
	_, err := bc.Fetch(context.Background(), srv.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for a body-level failure", netErr.StatusCode)
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	bc := New(testConfig())
	_, err := bc.Fetch(context.Background(), srv.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if netErr.Unwrap() == nil {
		t.Error("transport failure should carry the underlying error")
	}
}

func TestNetworkErrorMessage(t *testing.T) {
	withStatus := &NetworkError{URL: "https://x/page", StatusCode: 503}
	if withStatus.Error() != "fetch https://x/page: HTTP 503" {
		t.Errorf("message = %q", withStatus.Error())
	}
	withErr := &NetworkError{URL: "https://x/page", Err: errors.New("timeout")}
	if withErr.Error() != "fetch https://x/page: timeout" {
		t.Errorf("message = %q", withErr.Error())
	}
}
