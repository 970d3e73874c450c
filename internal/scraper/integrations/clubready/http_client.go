package clubready

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

const defaultBaseURL = "https://www.clubready.com"

const schedulePath = "/api/current/json/reply/GetClassScheduleRequestV2"

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

// GetClassSchedule returns the classes of a store between from and to.
// GET /api/current/json/reply/GetClassScheduleRequestV2?ApiKey=...&StoreId=...&StartDate=...&EndDate=...
func (c *Client) GetClassSchedule(ctx context.Context, storeID string, from, to time.Time) (*ScheduleResponse, error) {
	if c.apiKey == "" {
		return nil, integrations.ErrMissingCredentials
	}
	q := url.Values{}
	q.Set("ApiKey", c.apiKey)
	q.Set("StoreId", storeID)
	q.Set("StartDate", isoMillis(from))
	q.Set("EndDate", isoMillis(to))

	var out ScheduleResponse
	if err := integrations.GetJSON(ctx, c.client, c.baseURL+schedulePath+"?"+q.Encode(), nil, c.userAgent, &out); err != nil {
		return nil, fmt.Errorf("clubready schedule for store %s: %w", storeID, err)
	}
	return &out, nil
}

func isoMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
