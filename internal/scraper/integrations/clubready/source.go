package clubready

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

// Source fetches every configured store of a brand from ClubReady. Stores that cannot be
// fetched get generated classes instead.
type Source struct {
	client *Client
	brand  config.BrandConfig
	retry  integrations.RetryConfig
}

func NewSource(client *Client, brand config.BrandConfig, retry integrations.RetryConfig) *Source {
	return &Source{client: client, brand: brand, retry: retry}
}

func (s *Source) Fetch(ctx context.Context, date time.Time) ([]ClassItem, error) {
	days := integrations.ScheduleWindow(date, s.brand.Location(), s.brand.WindowDays)
	from := days[0]
	to := days[len(days)-1].AddDate(0, 0, 1).Add(-time.Millisecond)

	var out []ClassItem
	live := 0
	for _, loc := range s.brand.Locations {
		items, err := s.fetchStore(ctx, loc, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, integrations.ErrMissingCredentials) {
				slog.Warn("ClubReady API key not configured, using generated classes", "brand", s.brand.Brand, "studio_id", loc.StudioID)
			} else {
				slog.Error("ClubReady fetch failed, using generated classes", "brand", s.brand.Brand, "studio_id", loc.StudioID, "error", err)
			}
			out = append(out, s.mock(loc, date)...)
			continue
		}
		live++
		out = append(out, items...)
	}

	if live > 0 {
		integrations.RecordTier(ctx, models.TierAPI)
	} else {
		integrations.RecordTier(ctx, models.TierMock)
	}
	return out, nil
}

func (s *Source) fetchStore(ctx context.Context, loc config.LocationConfig, from, to time.Time) ([]ClassItem, error) {
	resp, err := integrations.RetryValue(ctx, s.retry, func(ctx context.Context) (*ScheduleResponse, error) {
		return s.client.GetClassSchedule(ctx, loc.StoreID, from, to)
	})
	if err != nil {
		return nil, err
	}
	items := resp.Classes
	for i := range items {
		items[i].StudioID = loc.StudioID
		items[i].StoreID = loc.StoreID
	}
	return items, nil
}

func (s *Source) mock(loc config.LocationConfig, date time.Time) []ClassItem {
	sessions := mockgen.Window(s.brand, loc.StudioID, date)
	out := make([]ClassItem, 0, len(sessions))
	for _, m := range sessions {
		capacity, spots := m.Capacity, m.SpotsAvailable
		out = append(out, ClassItem{
			ClassName:      m.ClassName,
			InstructorName: m.Instructor,
			StartTime:      m.Start.Format(time.RFC3339),
			Duration:       m.Duration,
			Capacity:       &capacity,
			SpotsAvailable: &spots,
			Level:          integrations.FlexString(m.Level),
			StudioID:       loc.StudioID,
			StoreID:        loc.StoreID,
		})
	}
	return out
}
