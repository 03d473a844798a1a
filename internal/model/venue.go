package model

// Venue is a nightlife venue. Rows are seeded outside the service and are
// read-only here.
//
// Fields:
//  ID   – venues.id, UUID text.
//  Name – display name; matched case-insensitively against scraped venues.
type Venue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VenueWithCount annotates a venue with how many surveys it received in the
// trailing 24 hours.
type VenueWithCount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SurveyCount int    `json:"surveyCount"`
}
