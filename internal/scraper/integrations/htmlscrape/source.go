package htmlscrape

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/cards"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations/mockgen"
)

const dayKey = "day"

// Record is a class card read from a studio's schedule page.
type Record struct {
	StudioID string
	Card     cards.Card
	Tier     models.DataTier
}

// Source reads static schedule pages, one request per day of the window when the page URL
// takes a {date}, and generates classes for locations whose pages yield nothing. Generated
// classes cover the same days the page would have.
type Source struct {
	brand config.BrandConfig
	opts  CollectorOptions
}

func NewSource(brand config.BrandConfig, opts CollectorOptions) *Source {
	return &Source{brand: brand, opts: opts}
}

func (s *Source) Fetch(ctx context.Context, date time.Time) ([]Record, error) {
	window := integrations.ScheduleWindow(date, s.brand.Location(), s.brand.WindowDays)

	var out []Record
	scraped := 0
	for _, l := range s.brand.Locations {
		days := integrations.PageDays(l.ScheduleURL, window)
		var records []Record
		if l.ScheduleURL != "" {
			var err error
			records, err = s.scrapeLocation(ctx, l, days)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil {
				slog.Error("htmlscrape: schedule page failed", "brand", s.brand.Brand, "studio_id", l.StudioID, "error", err)
			}
		}
		if len(records) == 0 {
			slog.Warn("htmlscrape: no classes on page, using generated classes", "brand", s.brand.Brand, "studio_id", l.StudioID)
			out = append(out, s.mock(l, days)...)
			continue
		}
		scraped++
		out = append(out, records...)
	}

	if scraped > 0 {
		integrations.RecordTier(ctx, models.TierHTML)
	} else {
		integrations.RecordTier(ctx, models.TierMock)
	}
	return out, nil
}

func (s *Source) scrapeLocation(ctx context.Context, l config.LocationConfig, days []time.Time) ([]Record, error) {
	c, err := newCollector(ctx, s.opts)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		records []Record
		lastErr error
	)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		day, ok := e.Request.Ctx.GetAny(dayKey).(time.Time)
		if !ok {
			return
		}
		found := cards.Extract(e.DOM, day)
		mu.Lock()
		for _, card := range found {
			records = append(records, Record{StudioID: l.StudioID, Card: card, Tier: models.TierHTML})
		}
		mu.Unlock()
	})
	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		lastErr = err
		mu.Unlock()
		slog.Debug("htmlscrape: request failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	for _, day := range days {
		rctx := colly.NewContext()
		rctx.Put(dayKey, day)
		if err := c.Request(http.MethodGet, integrations.ExpandURL(l.ScheduleURL, day), nil, rctx, nil); err != nil {
			lastErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	return records, lastErr
}

func (s *Source) mock(l config.LocationConfig, days []time.Time) []Record {
	var sessions []mockgen.Session
	for _, day := range days {
		sessions = append(sessions, mockgen.Day(s.brand, l.StudioID, day)...)
	}
	out := make([]Record, 0, len(sessions))
	for _, m := range sessions {
		out = append(out, Record{
			StudioID: l.StudioID,
			Card: cards.Card{
				Name:       m.ClassName,
				Instructor: m.Instructor,
				Level:      m.Level,
				Start:      m.Start,
				Duration:   m.Duration,
			},
			Tier: models.TierMock,
		})
	}
	return out
}

func (s *Source) Normalize(raw []Record) ([]models.FitnessClass, error) {
	out := make([]models.FitnessClass, 0, len(raw))
	for _, r := range raw {
		c := r.Card
		if c.Name == "" || c.Start.IsZero() || r.StudioID == "" {
			continue
		}
		end, duration := integrations.ReconcileTiming(c.Start, c.End, c.Duration, s.brand.DefaultDuration)
		out = append(out, models.FitnessClass{
			ID:         models.ClassID(r.StudioID, c.Start, c.Name),
			StudioID:   r.StudioID,
			ClassName:  c.Name,
			Instructor: integrations.FirstNonEmpty(c.Instructor, "TBD"),
			StartTime:  c.Start,
			EndTime:    end,
			Duration:   duration,
			Level:      models.OptionalString(c.Level),
			BookingURL: models.OptionalString(integrations.FirstNonEmpty(c.BookingURL, integrations.ExpandStudio(s.brand.BookingURL, r.StudioID))),
		})
	}
	return out, nil
}
