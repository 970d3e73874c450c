package clubready

import (
	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func init() {
	integrations.Register(config.TypeClubReady, New)
}

// New builds the ClubReady adapter for one brand.
func New(cfg *config.Config, bc config.BrandConfig) (integrations.Integration, error) {
	httpClient, err := integrations.NewHTTPClient(cfg.Scraper.HTTPTimeout, cfg.Scraper.Proxy)
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg.ClubReady.BaseURL, cfg.ClubReady.APIKey, httpClient, cfg.Scraper.UserAgent)
	retry := integrations.RetryConfig{MaxRetries: cfg.Scraper.Retry.MaxRetries, BaseDelay: cfg.Scraper.Retry.BaseDelay}

	src := NewSource(client, bc, retry)
	return integrations.NewAdapter(integrations.InfoFor(bc, integrations.TypeAPI), integrations.Source[ClassItem](src)), nil
}
