package clubready

import "github.com/Vodeneev/exerciser/internal/scraper/integrations"

// ScheduleResponse is the GetClassScheduleRequestV2 reply.
type ScheduleResponse struct {
	Classes []ClassItem `json:"Classes"`
}

// ClassItem is one class as ClubReady returns it. Field names vary between store
// configurations, so most values have an alternate spelling.
type ClassItem struct {
	ClassID         integrations.FlexString `json:"ClassId"`
	ID              integrations.FlexString `json:"Id"`
	ClassName       string                  `json:"ClassName"`
	Name            string                  `json:"Name"`
	InstructorName  string                  `json:"InstructorName"`
	Instructor      string                  `json:"Instructor"`
	StartTime       string                  `json:"StartTime"`
	EndTime         string                  `json:"EndTime"`
	Duration        int                     `json:"Duration"`
	Capacity        *int                    `json:"Capacity"`
	SpotsAvailable  *int                    `json:"SpotsAvailable"`
	Available       *int                    `json:"Available"`
	Level           integrations.FlexString `json:"Level"`
	DifficultyLevel integrations.FlexString `json:"DifficultyLevel"`
	Description     string                  `json:"Description"`
	StudioLocation  string                  `json:"StudioLocation"`
	Location        string                  `json:"Location"`
	BookingURL      string                  `json:"BookingUrl"`

	// Set by the adapter, not by the API.
	StudioID string `json:"-"`
	StoreID  string `json:"-"`
}
