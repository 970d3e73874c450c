package htmlscrape

import (
	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func init() {
	integrations.Register(config.TypeHTMLScrape, New)
}

// New builds the static-page adapter for one brand.
func New(cfg *config.Config, bc config.BrandConfig) (integrations.Integration, error) {
	src := NewSource(bc, CollectorOptions{
		UserAgent: cfg.Scraper.UserAgent,
		Proxy:     cfg.Scraper.Proxy,
		Timeout:   cfg.Scraper.HTTPTimeout,
	})
	return integrations.NewAdapter(integrations.InfoFor(bc, integrations.TypeScraper), integrations.Source[Record](src)), nil
}
