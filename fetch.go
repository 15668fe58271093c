package wpmigrate

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher retrieves remote resources from the legacy site. Failures are
// ordinary errors; callers skip the item and continue.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher with the configured timeout and user agent.
func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		userAgent: cfg.UserAgent,
	}
}

func (f *Fetcher) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	return resp, nil
}

// Fetch returns the raw bytes of a resource. Only 2xx responses succeed.
func (f *Fetcher) Fetch(url string) ([]byte, error) {
	resp, err := f.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	return data, nil
}

// FetchHTML returns an HTML page decoded to UTF-8 using the response
// content type's charset.
func (f *Fetcher) FetchHTML(url string) (string, error) {
	resp, err := f.get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	return string(data), nil
}
