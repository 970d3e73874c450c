package mindbody

import "github.com/Vodeneev/exerciser/internal/scraper/integrations"

// ClassesResponse is the body of GET /public/v6/class/classes.
type ClassesResponse struct {
	PaginationResponse PaginationResponse `json:"PaginationResponse"`
	Classes            []Class            `json:"Classes"`
}

type PaginationResponse struct {
	RequestedLimit  int `json:"RequestedLimit"`
	RequestedOffset int `json:"RequestedOffset"`
	PageSize        int `json:"PageSize"`
	TotalResults    int `json:"TotalResults"`
}

type Class struct {
	ID               integrations.FlexString `json:"Id"`
	Name             string                  `json:"Name"`
	ClassDescription *ClassDescription       `json:"ClassDescription"`
	Staff            *Staff                  `json:"Staff"`
	StartDateTime    string                  `json:"StartDateTime"`
	EndDateTime      string                  `json:"EndDateTime"`
	Duration         int                     `json:"Duration"`
	MaxCapacity      *int                    `json:"MaxCapacity"`
	TotalBooked      *int                    `json:"TotalBooked"`
	Level            integrations.FlexString `json:"Level"`
	Location         *Location               `json:"Location"`
	BookingURL       string                  `json:"BookingUrl"`
	IsCanceled       bool                    `json:"IsCanceled"`

	// Set by the adapter, not by the API.
	StudioID string `json:"-"`
	SiteID   string `json:"-"`
}

type ClassDescription struct {
	Name        string                  `json:"Name"`
	Description string                  `json:"Description"`
	Level       integrations.FlexString `json:"Level"`
}

type Staff struct {
	ID          integrations.FlexString `json:"Id"`
	DisplayName string                  `json:"DisplayName"`
	FirstName   string                  `json:"FirstName"`
	LastName    string                  `json:"LastName"`
}

type Location struct {
	ID   integrations.FlexString `json:"Id"`
	Name string                  `json:"Name"`
}
