// Package extract downloads web pages and turns them into readable articles.
package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

const (
	defaultMaxBytes = 5 << 20
	userAgent       = "kernel-api/1.0 (+article-fetcher)"
)

// NewSafeClient returns an HTTP client that refuses private, loopback,
// link-local and metadata addresses, including after DNS resolution.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// Fetcher downloads HTML pages with a size cap.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher wraps client. Production code passes NewSafeClient.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch returns the page body truncated to maxBytes. Non-HTML responses yield
// domain.ErrUnsupportedContent.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBytes))
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("fetch %s: %w: %s", rawURL, domain.ErrUnsupportedContent, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &domain.Page{URL: final, ContentType: contentType, Body: body}, nil
}

// isHTML accepts a missing content type; servers often omit it for HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return media == "text/html" || media == "application/xhtml+xml" || strings.HasSuffix(media, "+html")
}
