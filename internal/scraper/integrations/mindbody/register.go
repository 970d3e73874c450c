package mindbody

import (
	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func init() {
	integrations.Register(config.TypeMindbody, New)
}

// New builds the MINDBODY adapter for one brand.
func New(cfg *config.Config, bc config.BrandConfig) (integrations.Integration, error) {
	httpClient, err := integrations.NewHTTPClient(cfg.Scraper.HTTPTimeout, cfg.Scraper.Proxy)
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg.Mindbody.BaseURL, cfg.Mindbody.APIKey, httpClient, cfg.Scraper.UserAgent)
	retry := integrations.RetryConfig{MaxRetries: cfg.Scraper.Retry.MaxRetries, BaseDelay: cfg.Scraper.Retry.BaseDelay}

	src := NewSource(client, bc, retry)
	return integrations.NewAdapter(integrations.InfoFor(bc, integrations.TypeAPI), integrations.Source[Class](src)), nil
}
