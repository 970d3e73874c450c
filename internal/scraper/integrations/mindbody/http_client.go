package mindbody

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

const defaultBaseURL = "https://api.mindbodyonline.com"

const (
	classesPath = "/public/v6/class/classes"
	pageLimit   = 200
	maxPages    = 20
)

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, userAgent string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    httpClient,
	}
}

// GetClasses pages through the classes of one site between from and to.
// GET /public/v6/class/classes?StartDateTime=...&EndDateTime=...&Limit=...&Offset=...
func (c *Client) GetClasses(ctx context.Context, siteID string, from, to time.Time) ([]Class, error) {
	if c.apiKey == "" {
		return nil, integrations.ErrMissingCredentials
	}
	headers := map[string]string{
		"Api-Key":      c.apiKey,
		"SiteId":       siteID,
		"Content-Type": "application/json",
	}

	var all []Class
	offset := 0
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("StartDateTime", from.UTC().Format(time.RFC3339))
		q.Set("EndDateTime", to.UTC().Format(time.RFC3339))
		q.Set("Limit", strconv.Itoa(pageLimit))
		q.Set("Offset", strconv.Itoa(offset))

		var resp ClassesResponse
		if err := integrations.GetJSON(ctx, c.client, c.baseURL+classesPath+"?"+q.Encode(), headers, c.userAgent, &resp); err != nil {
			return nil, fmt.Errorf("mindbody classes for site %s: %w", siteID, err)
		}
		all = append(all, resp.Classes...)

		offset += len(resp.Classes)
		if len(resp.Classes) == 0 || offset >= resp.PaginationResponse.TotalResults {
			break
		}
	}
	return all, nil
}
