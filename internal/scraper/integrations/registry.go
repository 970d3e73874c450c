package integrations

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
)

// Factory builds the adapter for one brands[] entry.
type Factory func(cfg *config.Config, bc config.BrandConfig) (Integration, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register binds a brands[].type value to a factory. Platform packages call it from init.
func Register(typ string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(typ))
	if n == "" {
		panic("integrations: empty type in Register")
	}
	if f == nil {
		panic("integrations: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("integrations: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByType(typ string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(typ))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build turns the brands table into adapters, in file order, skipping brands not selected
// by scraper.enabled_brands.
func Build(cfg *config.Config) ([]Integration, error) {
	out := make([]Integration, 0, len(cfg.Brands))
	for _, bc := range cfg.Brands {
		if !cfg.BrandEnabled(bc.Name) && !cfg.BrandEnabled(bc.Brand) {
			continue
		}
		f, ok := FactoryByType(bc.Type)
		if !ok {
			return nil, fmt.Errorf("%w: brand %s has type %q (available: %v)", ErrInvalidRegistration, bc.Name, bc.Type, AvailableTypes())
		}
		integ, err := f(cfg, bc)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", bc.Name, err)
		}
		if integ == nil {
			return nil, fmt.Errorf("%w: factory for %s returned nil", ErrInvalidRegistration, bc.Name)
		}
		out = append(out, integ)
	}
	return out, nil
}

// InfoFor derives adapter identity from a brands[] entry.
func InfoFor(bc config.BrandConfig, typ IntegrationType) Info {
	info := Info{
		Name:       strings.ToLower(strings.TrimSpace(bc.Name)),
		Brand:      bc.Brand,
		StudioName: bc.StudioName,
		Type:       typ,
	}
	if len(bc.Locations) > 0 {
		info.StudioID = bc.Locations[0].StudioID
	}
	return info
}
