package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func TestAllTypesRegistered(t *testing.T) {
	for _, typ := range []string{config.TypeClubReady, config.TypeMindbody, config.TypeWebCapture, config.TypeHTMLScrape} {
		_, ok := integrations.FactoryByType(typ)
		assert.True(t, ok, typ)
	}
}

func TestBuild_FromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
brands:
  - name: club-pilates
    brand: Club Pilates
    type: webcapture
    class_types: [{name: Reformer Flow, duration: 50}]
    locations: [{studio_id: club-pilates-sf-marina, schedule_url: "https://www.clubpilates.com/location/sf-marina/schedule"}]
  - name: cyclebar
    brand: CycleBar
    type: clubready
    class_types: [{name: Rhythm Ride, duration: 45}]
    locations: [{studio_id: cyclebar-sf-soma, store_id: "1"}]
  - name: jia-ren-yoga
    brand: Jia Ren Yoga
    type: htmlscrape
    class_types: [{name: Vinyasa, duration: 60}]
    locations: [{studio_id: jiarenyoga-sf-soma}]
`))
	if err != nil {
		t.Fatal(err)
	}

	list, err := integrations.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if assert.Len(t, list, 3) {
		assert.Equal(t, integrations.TypeReverseEngineeredAPI, list[0].Info().Type)
		assert.Equal(t, integrations.TypeAPI, list[1].Info().Type)
		assert.Equal(t, integrations.TypeScraper, list[2].Info().Type)
		assert.Equal(t, "club-pilates-sf-marina", list[0].Info().StudioID)
	}
}
