package integrations

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const maxErrorBody = 200

// NewHTTPClient builds a client with an optional outbound proxy.
func NewHTTPClient(timeout time.Duration, proxy string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// GetJSON performs a GET with headers and decodes the (possibly compressed) JSON body into out.
// Non-2xx responses come back as *StatusError.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "gzip, br, zstd")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := ReadBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(body)
		if len(preview) > maxErrorBody {
			preview = preview[:maxErrorBody] + "..."
		}
		return &StatusError{StatusCode: resp.StatusCode, URL: redact(req.URL), Body: preview}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ReadBody reads r and decompresses it according to a Content-Encoding value (gzip, br, zstd).
func ReadBody(encoding string, r io.Reader) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch {
	case enc == "br" || strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(r))
	case enc == "zstd" || strings.Contains(enc, "zstd"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case enc == "gzip" || strings.Contains(enc, "gzip"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gr.Close()
		b, err := io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("read gzip body: %w", err)
		}
		return b, nil
	default:
		return io.ReadAll(r)
	}
}

// redact drops query parameters that carry credentials before a URL reaches logs.
func redact(u *url.URL) string {
	c := *u
	q := c.Query()
	for k := range q {
		if strings.Contains(strings.ToLower(k), "key") {
			q.Set(k, "REDACTED")
		}
	}
	c.RawQuery = q.Encode()
	return c.String()
}

// ExpandURL substitutes the {date} placeholder with day as YYYY-MM-DD.
func ExpandURL(tmpl string, day time.Time) string {
	return strings.ReplaceAll(tmpl, "{date}", day.Format("2006-01-02"))
}

// PageDays returns the days a schedule page answers for: all of window when tmpl takes a
// {date}, otherwise only the first day.
func PageDays(tmpl string, window []time.Time) []time.Time {
	if len(window) == 0 || strings.Contains(tmpl, "{date}") {
		return window
	}
	return window[:1]
}

// ExpandStudio replaces {studio_id} in a brand-level booking URL template.
func ExpandStudio(tmpl, studioID string) string {
	return strings.ReplaceAll(tmpl, "{studio_id}", studioID)
}
