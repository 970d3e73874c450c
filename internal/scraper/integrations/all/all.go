// Package all imports every adapter type for side-effect registration.
//
// Import it from main so brands[].type values resolve:
//
//	import _ "github.com/Vodeneev/exerciser/internal/scraper/integrations/all"
package all

import (
	_ "github.com/Vodeneev/exerciser/internal/scraper/integrations/clubready"
	_ "github.com/Vodeneev/exerciser/internal/scraper/integrations/htmlscrape"
	_ "github.com/Vodeneev/exerciser/internal/scraper/integrations/mindbody"
	_ "github.com/Vodeneev/exerciser/internal/scraper/integrations/webcapture"
)
