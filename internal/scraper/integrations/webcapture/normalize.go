package webcapture

import (
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func (s *Source) Normalize(raw []Record) ([]models.FitnessClass, error) {
	return Normalize(raw, s.brand.DefaultDuration, s.brand.BookingURL), nil
}

func Normalize(raw []Record, defaultDuration int, bookingURL string) []models.FitnessClass {
	out := make([]models.FitnessClass, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" || r.StudioID == "" || r.Start.IsZero() {
			continue
		}
		end, duration := integrations.ReconcileTiming(r.Start, r.End, r.Duration, defaultDuration)
		out = append(out, models.FitnessClass{
			ID:             models.ClassID(r.StudioID, r.Start, r.Name),
			StudioID:       r.StudioID,
			ClassName:      r.Name,
			Instructor:     integrations.FirstNonEmpty(r.Instructor, "TBD"),
			StartTime:      r.Start,
			EndTime:        end,
			Duration:       duration,
			Capacity:       models.OptionalInt(r.Capacity),
			SpotsAvailable: models.OptionalInt(r.SpotsAvailable),
			Level:          models.OptionalString(r.Level),
			Description:    models.OptionalString(r.Description),
			BookingURL:     models.OptionalString(integrations.FirstNonEmpty(r.BookingURL, integrations.ExpandStudio(bookingURL, r.StudioID))),
		})
	}
	return out
}
