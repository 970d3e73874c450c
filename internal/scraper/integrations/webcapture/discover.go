package webcapture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
)

// Endpoint is one JSON response a page fetched while loading.
type Endpoint struct {
	URL          string          `json:"url"`
	Method       string          `json:"method,omitempty"`
	ResourceType string          `json:"resource_type,omitempty"`
	Status       int             `json:"status"`
	MimeType     string          `json:"mime_type"`
	Body         json.RawMessage `json:"body,omitempty"`
}

// Discovery lists the endpoints behind a booking page, for wiring a brand to a direct API.
type Discovery struct {
	PageURL      string     `json:"page_url"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	Endpoints    []Endpoint `json:"endpoints"`
}

// BrowserOptionsFromConfig maps the browser and scraper sections onto session options.
func BrowserOptionsFromConfig(cfg *config.Config) BrowserOptions {
	return BrowserOptions{
		Headless:        cfg.Browser.IsHeadless(),
		UserAgent:       cfg.Scraper.UserAgent,
		Proxy:           cfg.Scraper.Proxy,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		SettleWait:      cfg.Browser.SettleWait,
		InteractionWait: cfg.Browser.InteractionWait,
	}
}

// Discover visits pageURL once and reports the JSON responses the capture filter keeps.
// tokens widen the filter the same way a brand's capture_hosts do.
func Discover(ctx context.Context, open Opener, pageURL string, date time.Time, tokens []string) (Discovery, error) {
	sess, err := open(ctx)
	if err != nil {
		return Discovery{}, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("webcapture: browser cleanup failed", "error", err)
		}
	}()

	capture, err := sess.Visit(ctx, pageURL, date, tokens)
	if err != nil {
		return Discovery{}, err
	}

	d := Discovery{PageURL: pageURL, DiscoveredAt: time.Now().UTC(), Endpoints: make([]Endpoint, 0, len(capture.Responses))}
	for _, r := range capture.Responses {
		ep := Endpoint{
			URL:          r.URL,
			Method:       r.Method,
			ResourceType: r.ResourceType,
			Status:       r.Status,
			MimeType:     r.MimeType,
		}
		if json.Valid(r.Body) {
			ep.Body = json.RawMessage(r.Body)
		}
		d.Endpoints = append(d.Endpoints, ep)
		slog.Info("webcapture: API response", "method", r.Method, "url", r.URL, "status", r.Status)
	}
	slog.Info("webcapture: discovery finished", "url", pageURL, "endpoints", len(d.Endpoints))
	return d, nil
}

// WriteJSON writes the report as indented JSON.
func (d Discovery) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Save writes the report to path.
func (d Discovery) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.WriteJSON(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
