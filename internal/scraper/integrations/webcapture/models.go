package webcapture

import (
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

// Record is a class recovered from a booking page, whichever tier produced it.
type Record struct {
	StudioID       string
	Name           string
	Instructor     string
	Level          string
	Description    string
	BookingURL     string
	Start          time.Time
	End            *time.Time
	Duration       int
	Capacity       *int
	SpotsAvailable *int
	Tier           models.DataTier
}

// CapturedResponse is an intercepted JSON response.
type CapturedResponse struct {
	URL          string
	Method       string
	ResourceType string
	MimeType     string
	Status       int
	Body         []byte
}

// Capture is everything one page visit produced.
type Capture struct {
	Responses []CapturedResponse
	HTML      string
}
