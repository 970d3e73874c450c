package htmlscrape

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollectorOptions configures the per-Fetch collector.
type CollectorOptions struct {
	UserAgent string
	Proxy     string
	Timeout   time.Duration
}

func newCollector(ctx context.Context, opts CollectorOptions) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
	)
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.Proxy != "" {
		if err := c.SetProxy(opts.Proxy); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}
	return c, nil
}
