package mindbody

import (
	"strings"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

func (s *Source) Normalize(raw []Class) ([]models.FitnessClass, error) {
	return Normalize(raw, s.brand.Location(), s.brand.DefaultDuration, s.brand.BookingURL), nil
}

// Normalize maps MINDBODY classes to the canonical schema. Cancelled classes and records
// without a name or start time are dropped.
func Normalize(raw []Class, loc *time.Location, defaultDuration int, bookingURL string) []models.FitnessClass {
	out := make([]models.FitnessClass, 0, len(raw))
	for _, c := range raw {
		if c.IsCanceled {
			continue
		}
		fc, ok := normalizeClass(c, loc, defaultDuration, bookingURL)
		if ok {
			out = append(out, fc)
		}
	}
	return out
}

func normalizeClass(c Class, loc *time.Location, defaultDuration int, bookingURL string) (models.FitnessClass, bool) {
	var descName, descText, descLevel string
	if c.ClassDescription != nil {
		descName = c.ClassDescription.Name
		descText = c.ClassDescription.Description
		descLevel = c.ClassDescription.Level.String()
	}
	name := integrations.FirstNonEmpty(descName, c.Name)
	if name == "" || c.StudioID == "" {
		return models.FitnessClass{}, false
	}

	start, err := integrations.ParseTimestamp(c.StartDateTime, loc)
	if err != nil {
		return models.FitnessClass{}, false
	}
	var endPtr *time.Time
	if c.EndDateTime != "" {
		if end, err := integrations.ParseTimestamp(c.EndDateTime, loc); err == nil {
			endPtr = &end
		}
	}
	end, duration := integrations.ReconcileTiming(start, endPtr, c.Duration, defaultDuration)

	booking := integrations.FirstNonEmpty(c.BookingURL, integrations.ExpandStudio(bookingURL, c.StudioID))
	if booking == "" && c.SiteID != "" {
		booking = "https://clients.mindbodyonline.com/classic/ws?studioid=" + c.SiteID
	}

	return models.FitnessClass{
		ID:             models.ClassID(c.StudioID, start, name),
		StudioID:       c.StudioID,
		ClassName:      name,
		Instructor:     instructor(c.Staff),
		StartTime:      start,
		EndTime:        end,
		Duration:       duration,
		Capacity:       models.OptionalInt(c.MaxCapacity),
		SpotsAvailable: spotsAvailable(c.MaxCapacity, c.TotalBooked),
		Level:          models.OptionalString(integrations.FirstNonEmpty(descLevel, c.Level.String())),
		Description:    models.OptionalString(strings.TrimSpace(descText)),
		BookingURL:     models.OptionalString(booking),
	}, true
}

func instructor(s *Staff) string {
	if s == nil {
		return "TBD"
	}
	full := strings.TrimSpace(s.FirstName + " " + s.LastName)
	return integrations.FirstNonEmpty(s.DisplayName, full, "TBD")
}

// spotsAvailable is absent unless both capacity and bookings are known.
func spotsAvailable(capacity, booked *int) *int {
	if capacity == nil || booked == nil {
		return nil
	}
	left := *capacity - *booked
	if left < 0 {
		left = 0
	}
	return &left
}
