package integrations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

type staticIntegration struct{ info Info }

func (s staticIntegration) Info() Info { return s.info }
func (s staticIntegration) Run(context.Context, time.Time) models.ScrapeResult {
	return models.ScrapeResult{Brand: s.info.Brand, Status: models.StatusSuccess}
}

func TestRegister_Panics(t *testing.T) {
	assert.Panics(t, func() { Register("  ", func(*config.Config, config.BrandConfig) (Integration, error) { return nil, nil }) })
	assert.Panics(t, func() { Register("registry-test-nil", nil) })

	f := func(*config.Config, config.BrandConfig) (Integration, error) { return nil, nil }
	Register("registry-test-dup", f)
	assert.Panics(t, func() { Register("Registry-Test-Dup", f) })
}

func TestBuild_OrderAndFilter(t *testing.T) {
	Register("registry-test-static", func(_ *config.Config, bc config.BrandConfig) (Integration, error) {
		return staticIntegration{info: InfoFor(bc, TypeAPI)}, nil
	})

	cfg := &config.Config{
		Brands: []config.BrandConfig{
			{Name: "b", Brand: "B", Type: "registry-test-static", Locations: []config.LocationConfig{{StudioID: "b-1"}}},
			{Name: "a", Brand: "A", Type: "registry-test-static", Locations: []config.LocationConfig{{StudioID: "a-1"}}},
			{Name: "c", Brand: "C", Type: "registry-test-static"},
		},
	}

	list, err := Build(cfg)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "B", list[0].Info().Brand)
	assert.Equal(t, "b-1", list[0].Info().StudioID)
	assert.Equal(t, "A", list[1].Info().Brand)

	cfg.Scraper.EnabledBrands = []string{"c", "A"}
	list, err = Build(cfg)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Info().Brand)
	assert.Equal(t, "C", list[1].Info().Brand)
}

func TestBuild_UnknownType(t *testing.T) {
	cfg := &config.Config{Brands: []config.BrandConfig{{Name: "x", Brand: "X", Type: "registry-test-missing"}}}
	_, err := Build(cfg)
	assert.ErrorIs(t, err, ErrInvalidRegistration)
}
