package webcapture

import (
	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func init() {
	integrations.Register(config.TypeWebCapture, New)
}

// New builds the browser-capture adapter for one brand.
func New(cfg *config.Config, bc config.BrandConfig) (integrations.Integration, error) {
	src := NewSource(bc, ChromeOpener(BrowserOptionsFromConfig(cfg)))
	return integrations.NewAdapter(integrations.InfoFor(bc, integrations.TypeReverseEngineeredAPI), integrations.Source[Record](src)), nil
}
