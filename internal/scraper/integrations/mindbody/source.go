package mindbody

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/mockgen"
)

// Source fetches every configured MINDBODY site of a brand.
type Source struct {
	client *Client
	brand  config.BrandConfig
	retry  integrations.RetryConfig
}

func NewSource(client *Client, brand config.BrandConfig, retry integrations.RetryConfig) *Source {
	return &Source{client: client, brand: brand, retry: retry}
}

func (s *Source) Fetch(ctx context.Context, date time.Time) ([]Class, error) {
	days := integrations.ScheduleWindow(date, s.brand.Location(), s.brand.WindowDays)
	from := days[0]
	to := days[len(days)-1].AddDate(0, 0, 1).Add(-time.Second)

	var out []Class
	live := 0
	for _, loc := range s.brand.Locations {
		classes, err := integrations.RetryValue(ctx, s.retry, func(ctx context.Context) ([]Class, error) {
			return s.client.GetClasses(ctx, loc.SiteID, from, to)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, integrations.ErrMissingCredentials) {
				slog.Warn("MINDBODY API key not configured, using generated classes", "brand", s.brand.Brand, "studio_id", loc.StudioID)
			} else {
				slog.Error("MINDBODY fetch failed, using generated classes", "brand", s.brand.Brand, "studio_id", loc.StudioID, "error", err)
			}
			out = append(out, s.mock(loc, date)...)
			continue
		}
		live++
		for i := range classes {
			classes[i].StudioID = loc.StudioID
			classes[i].SiteID = loc.SiteID
		}
		out = append(out, classes...)
	}

	if live > 0 {
		integrations.RecordTier(ctx, models.TierAPI)
	} else {
		integrations.RecordTier(ctx, models.TierMock)
	}
	return out, nil
}

func (s *Source) mock(loc config.LocationConfig, date time.Time) []Class {
	sessions := mockgen.Window(s.brand, loc.StudioID, date)
	out := make([]Class, 0, len(sessions))
	for _, m := range sessions {
		capacity, booked := m.Capacity, m.Capacity-m.SpotsAvailable
		out = append(out, Class{
			ClassDescription: &ClassDescription{Name: m.ClassName, Level: integrations.FlexString(m.Level)},
			Staff:            &Staff{DisplayName: m.Instructor},
			StartDateTime:    m.Start.Format(time.RFC3339),
			EndDateTime:      m.Start.Add(time.Duration(m.Duration) * time.Minute).Format(time.RFC3339),
			MaxCapacity:      &capacity,
			TotalBooked:      &booked,
			StudioID:         loc.StudioID,
			SiteID:           loc.SiteID,
		})
	}
	return out
}
