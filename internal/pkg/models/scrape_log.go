package models

import (
	"fmt"
	"time"
)

// ScrapeLog is the append-only audit row written once per adapter run.
type ScrapeLog struct {
	ID           int64     `json:"id" db:"id"`
	Brand        string    `json:"brand" db:"brand"`
	Status       string    `json:"status" db:"status"`
	Message      *string   `json:"message,omitempty" db:"message"`
	ClassCount   int       `json:"class_count" db:"class_count"`
	CompletedAt  time.Time `json:"completed_at" db:"completed_at"`
	ErrorDetails *string   `json:"error_details,omitempty" db:"error_details"`
}

// NewScrapeLog builds the audit row for a result.
func NewScrapeLog(r ScrapeResult, completedAt time.Time) ScrapeLog {
	l := ScrapeLog{
		Brand:       r.Brand,
		Status:      string(r.Status),
		Message:     OptionalString(r.Message),
		ClassCount:  r.ClassCount,
		CompletedAt: completedAt,
	}
	if r.Err != nil {
		l.ErrorDetails = OptionalString(fmt.Sprintf("%+v", r.Err))
	}
	return l
}
