package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/ratelimit"

	"livetv-scraper/work/config"
)

// NetworkError reports a failed page fetch: non-2xx status, transport
// failure, timeout, or an empty response body.
type NetworkError struct {
	URL        string
	StatusCode int // zero when the request never produced a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BrowserClient wraps http.Client with browser-like request headers and
// permissive TLS trust. The source site serves odd certificates and blocks
// obvious non-browser agents; retries are left to the caller.
type BrowserClient struct {
	client  *http.Client
	cfg     *config.Config
	limiter ratelimit.Limiter
}

// New creates a BrowserClient paced by the configured request rate.
func New(cfg *config.Config) *BrowserClient {
	return &BrowserClient{
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
			Transport: &http.Transport{
				TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: cfg.FetchTimeout,
			},
		},
		cfg:     cfg,
		limiter: ratelimit.New(cfg.RequestsPerSecond),
	}
}

// Fetch retrieves the markup at url. Returns a *NetworkError on transport
// failure, non-2xx status, or an empty body.
func (bc *BrowserClient) Fetch(ctx context.Context, url string) (string, error) {
	bc.limiter.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	bc.setHeaders(req)

	resp, err := bc.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	if len(body) == 0 {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("empty response body")}
	}

	return string(body), nil
}

func (bc *BrowserClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", bc.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Cache-Control", "no-cache")
}
