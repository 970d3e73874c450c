package webcapture

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/cards"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/mockgen"
)

// Source loads each location's public booking page in a browser and recovers the schedule
// from, in order: intercepted JSON, rendered class cards, generated data. The first tier
// that yields anything wins for that page. A schedule_url with {date} is visited once per
// day of the window; a static page covers the first day only, and so does its fallback.
type Source struct {
	brand config.BrandConfig
	open  Opener
}

func NewSource(brand config.BrandConfig, open Opener) *Source {
	return &Source{brand: brand, open: open}
}

func (s *Source) Fetch(ctx context.Context, date time.Time) ([]Record, error) {
	window := integrations.ScheduleWindow(date, s.brand.Location(), s.brand.WindowDays)

	var sess Session
	if s.needsBrowser() {
		var err error
		sess, err = s.open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Error("webcapture: browser unavailable, using generated classes", "brand", s.brand.Brand, "error", err)
		} else {
			defer func() {
				if err := sess.Close(); err != nil {
					slog.Warn("webcapture: browser cleanup failed", "brand", s.brand.Brand, "error", err)
				}
			}()
		}
	}

	var out []Record
	best := models.TierMock
	for _, l := range s.brand.Locations {
		records, tier := s.fetchLocation(ctx, sess, l, integrations.PageDays(l.ScheduleURL, window))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if rank(tier) > rank(best) {
			best = tier
		}
		out = append(out, records...)
	}
	integrations.RecordTier(ctx, best)
	return out, nil
}

func (s *Source) needsBrowser() bool {
	for _, l := range s.brand.Locations {
		if l.ScheduleURL != "" {
			return true
		}
	}
	return false
}

func (s *Source) fetchLocation(ctx context.Context, sess Session, l config.LocationConfig, days []time.Time) ([]Record, models.DataTier) {
	if sess == nil || l.ScheduleURL == "" {
		return s.mock(l, days...), models.TierMock
	}

	var out []Record
	best := models.TierMock
	for _, day := range days {
		records, tier := s.fetchDay(ctx, sess, l, day)
		if ctx.Err() != nil {
			return nil, tier
		}
		if rank(tier) > rank(best) {
			best = tier
		}
		out = append(out, records...)
	}
	return out, best
}

func (s *Source) fetchDay(ctx context.Context, sess Session, l config.LocationConfig, day time.Time) ([]Record, models.DataTier) {
	logger := slog.With("brand", s.brand.Brand, "studio_id", l.StudioID, "day", day.Format("2006-01-02"))

	capture, err := sess.Visit(ctx, integrations.ExpandURL(l.ScheduleURL, day), day, s.brand.CaptureHosts)
	if err != nil {
		logger.Error("webcapture: page visit failed, using generated classes", "error", err)
		return s.mock(l, day), models.TierMock
	}

	if records := ParseCaptured(capture.Responses, l.StudioID, s.brand.Location(), s.brand.DefaultDuration); len(records) > 0 {
		logger.Info("webcapture: classes from intercepted responses", "classes", len(records), "responses", len(capture.Responses))
		return records, models.TierCaptured
	}

	logger.Info("webcapture: no API data found, falling back to page scraping", "responses", len(capture.Responses))
	if records := fromCards(capture.HTML, l.StudioID, day); len(records) > 0 {
		logger.Info("webcapture: classes scraped from page", "classes", len(records))
		return records, models.TierHTML
	}

	logger.Warn("webcapture: no data found on page, using generated classes")
	return s.mock(l, day), models.TierMock
}

func fromCards(html, studioID string, day time.Time) []Record {
	if html == "" {
		return nil
	}
	found, err := cards.FromHTML(html, day)
	if err != nil {
		return nil
	}
	out := make([]Record, 0, len(found))
	for _, c := range found {
		out = append(out, Record{
			StudioID:   studioID,
			Name:       c.Name,
			Instructor: c.Instructor,
			Level:      c.Level,
			BookingURL: c.BookingURL,
			Start:      c.Start,
			End:        c.End,
			Duration:   c.Duration,
			Tier:       models.TierHTML,
		})
	}
	return out
}

func (s *Source) mock(l config.LocationConfig, days ...time.Time) []Record {
	var out []Record
	for _, day := range days {
		for _, m := range mockgen.Day(s.brand, l.StudioID, day) {
			capacity, spots := m.Capacity, m.SpotsAvailable
			out = append(out, Record{
				StudioID:       l.StudioID,
				Name:           m.ClassName,
				Instructor:     m.Instructor,
				Level:          m.Level,
				Start:          m.Start,
				Duration:       m.Duration,
				Capacity:       &capacity,
				SpotsAvailable: &spots,
				Tier:           models.TierMock,
			})
		}
	}
	return out
}

func rank(t models.DataTier) int {
	switch t {
	case models.TierCaptured:
		return 3
	case models.TierHTML:
		return 2
	case models.TierMock:
		return 1
	}
	return 0
}
