package models

// Studio is one physical location of a brand. Rows are created by the seed command and are
// read-only for the ingestion pipeline.
type Studio struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Brand       string   `json:"brand" db:"brand"`
	Location    string   `json:"location" db:"location"`
	Address     string   `json:"address" db:"address"`
	Latitude    *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" db:"longitude"`
	WebsiteURL  *string  `json:"website_url,omitempty" db:"website_url"`
	PhoneNumber *string  `json:"phone_number,omitempty" db:"phone_number"`
}
