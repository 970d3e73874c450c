package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

// ErrNotSuccessful is returned when a result that did not succeed is handed to WriteScrapeResult.
var ErrNotSuccessful = errors.New("storage: only successful results are written")

// ResultWriter applies adapter runs to the store.
type ResultWriter interface {
	// WriteScrapeResult prunes stale rows for the brand, inserts the result's classes and appends
	// a ScrapeLog row. Either all of it is committed or none of it is.
	WriteScrapeResult(ctx context.Context, result models.ScrapeResult) error

	// AppendScrapeLog records a run that produced nothing to persist.
	AppendScrapeLog(ctx context.Context, entry models.ScrapeLog) error
}

// Store is the full persistence surface used by the scraper binary.
type Store interface {
	ResultWriter

	// UpsertStudios creates or refreshes studio rows.
	UpsertStudios(ctx context.Context, studios []models.Studio) error

	// BrandStats summarises the stored classes of one brand.
	BrandStats(ctx context.Context, brand string) (BrandStats, error)

	// RecentScrapeLogs returns the newest log rows first. An empty brand means all brands.
	RecentScrapeLogs(ctx context.Context, brand string, limit int) ([]models.ScrapeLog, error)

	Close() error
}

// BrandStats is printed after runs so operators can see what landed.
type BrandStats struct {
	Brand    string     `json:"brand" db:"brand"`
	Studios  int        `json:"studios" db:"studios"`
	Classes  int        `json:"classes" db:"classes"`
	Upcoming int        `json:"upcoming" db:"upcoming"`
	First    *time.Time `json:"first,omitempty" db:"first_start"`
	Last     *time.Time `json:"last,omitempty" db:"last_start"`
}

// Options control the write policy shared by every Store implementation.
type Options struct {
	// Retention is how far in the past a class may start before it is pruned.
	Retention time.Duration
	// InsertPolicy is config.InsertSkip (first persisted wins) or config.InsertUpsert.
	InsertPolicy string
	// Now is injectable for tests.
	Now func() time.Time
}

// OptionsFromConfig maps the scraper section onto Options.
func OptionsFromConfig(sc config.ScraperConfig) Options {
	return Options{Retention: sc.Retention, InsertPolicy: sc.InsertPolicy}
}

func (o Options) withDefaults() Options {
	if o.Retention <= 0 {
		o.Retention = 24 * time.Hour
	}
	if o.InsertPolicy == "" {
		o.InsertPolicy = config.InsertSkip
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) cutoff() time.Time {
	return o.Now().Add(-o.Retention)
}

// StudiosFromConfig expands brand locations into studio rows for seeding.
func StudiosFromConfig(cfg *config.Config) []models.Studio {
	var out []models.Studio
	for _, bc := range cfg.Brands {
		for _, loc := range bc.Locations {
			name := bc.StudioName
			if loc.Name != "" {
				name = loc.Name
			}
			out = append(out, models.Studio{
				ID:          loc.StudioID,
				Name:        name,
				Brand:       bc.Brand,
				Location:    loc.City,
				Address:     loc.Address,
				Latitude:    loc.Latitude,
				Longitude:   loc.Longitude,
				WebsiteURL:  models.OptionalString(loc.WebsiteURL),
				PhoneNumber: models.OptionalString(loc.Phone),
			})
		}
	}
	return out
}
