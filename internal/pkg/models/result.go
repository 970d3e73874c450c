package models

import "time"

// ScrapeStatus is the outcome of one adapter run.
type ScrapeStatus string

const (
	StatusSuccess ScrapeStatus = "success"
	StatusError   ScrapeStatus = "error"
	StatusPartial ScrapeStatus = "partial"
)

// DataTier names where the classes of a successful run came from.
type DataTier string

const (
	TierAPI      DataTier = "api"
	TierCaptured DataTier = "captured"
	TierHTML     DataTier = "html"
	TierMock     DataTier = "mock"
)

// ScrapeResult is the unit of work handed to persistence.
// A result with StatusError never carries classes.
type ScrapeResult struct {
	Brand      string         `json:"brand"`
	Status     ScrapeStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Classes    []FitnessClass `json:"classes"`
	ClassCount int            `json:"class_count"`
	Err        error          `json:"-"`
	Duration   time.Duration  `json:"duration"`
	Tier       DataTier       `json:"tier,omitempty"`
}

// Succeeded reports whether the result may be persisted.
func (r ScrapeResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
