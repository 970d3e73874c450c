package models

import "time"

// FitnessClass is one scheduled session in canonical form.
// Optional fields are nil when the upstream did not provide them.
type FitnessClass struct {
	ID             string    `json:"id" db:"id"`
	StudioID       string    `json:"studio_id" db:"studio_id"`
	ClassName      string    `json:"class_name" db:"class_name"`
	Instructor     string    `json:"instructor" db:"instructor"`
	StartTime      time.Time `json:"start_time" db:"start_time"`
	EndTime        time.Time `json:"end_time" db:"end_time"`
	Duration       int       `json:"duration" db:"duration"` // minutes
	Capacity       *int      `json:"capacity,omitempty" db:"capacity"`
	SpotsAvailable *int      `json:"spots_available,omitempty" db:"spots_available"`
	Level          *string   `json:"level,omitempty" db:"level"`
	Description    *string   `json:"description,omitempty" db:"description"`
	BookingURL     *string   `json:"booking_url,omitempty" db:"booking_url"`
}

// DurationConsistent reports whether EndTime-StartTime equals Duration minutes.
func (c FitnessClass) DurationConsistent() bool {
	return c.EndTime.Sub(c.StartTime) == time.Duration(c.Duration)*time.Minute
}

// OptionalString returns nil for blank strings.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OptionalInt copies v so callers can hand in pointers into decoded upstream structs.
func OptionalInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
