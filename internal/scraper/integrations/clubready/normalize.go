package clubready

import (
	"log/slog"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func (s *Source) Normalize(raw []ClassItem) ([]models.FitnessClass, error) {
	return Normalize(raw, s.brand.Location(), s.brand.DefaultDuration, s.brand.BookingURL), nil
}

// Normalize maps ClubReady classes to the canonical schema. Records without a name or a
// parseable start time are dropped.
func Normalize(raw []ClassItem, loc *time.Location, defaultDuration int, bookingURL string) []models.FitnessClass {
	out := make([]models.FitnessClass, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		c, ok := normalizeItem(item, loc, defaultDuration, bookingURL)
		if !ok {
			skipped++
			continue
		}
		out = append(out, c)
	}
	if skipped > 0 {
		slog.Debug("ClubReady: dropped malformed classes", "skipped", skipped)
	}
	return out
}

func normalizeItem(item ClassItem, loc *time.Location, defaultDuration int, bookingURL string) (models.FitnessClass, bool) {
	name := integrations.FirstNonEmpty(item.ClassName, item.Name)
	if name == "" || item.StudioID == "" {
		return models.FitnessClass{}, false
	}
	start, err := integrations.ParseTimestamp(item.StartTime, loc)
	if err != nil {
		return models.FitnessClass{}, false
	}
	var endPtr *time.Time
	if item.EndTime != "" {
		if end, err := integrations.ParseTimestamp(item.EndTime, loc); err == nil {
			endPtr = &end
		}
	}
	end, duration := integrations.ReconcileTiming(start, endPtr, item.Duration, defaultDuration)

	spots := item.SpotsAvailable
	if spots == nil {
		spots = item.Available
	}

	booking := integrations.FirstNonEmpty(item.BookingURL, integrations.ExpandStudio(bookingURL, item.StudioID))
	if booking == "" && item.StoreID != "" {
		booking = "https://www.clubready.com/book/" + item.StoreID
	}

	return models.FitnessClass{
		ID:             models.ClassID(item.StudioID, start, name),
		StudioID:       item.StudioID,
		ClassName:      name,
		Instructor:     integrations.FirstNonEmpty(item.InstructorName, item.Instructor, "TBD"),
		StartTime:      start,
		EndTime:        end,
		Duration:       duration,
		Capacity:       models.OptionalInt(item.Capacity),
		SpotsAvailable: models.OptionalInt(spots),
		Level:          models.OptionalString(integrations.FirstNonEmpty(item.Level.String(), item.DifficultyLevel.String())),
		Description:    models.OptionalString(item.Description),
		BookingURL:     models.OptionalString(booking),
	}, true
}
