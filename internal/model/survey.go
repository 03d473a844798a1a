package model

import "time"

// Survey is one vibe check submission. Metric fields are integers in
// [0, 100]. Rows are append-only.
type Survey struct {
	ID             string    `json:"id"`
	VenueID        string    `json:"venueId"`
	MellowOrDancey int       `json:"mellowOrDancey"`
	Crowded        int       `json:"crowded"`
	SecurityChill  int       `json:"securityChill"`
	Ratio          int       `json:"ratio"`
	LineSpeed      int       `json:"lineSpeed"`
	Comment        *string   `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SurveyComment is a comment with its submission time.
type SurveyComment struct {
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// HourlyCount is the number of submissions in the hour starting at Hour.
// Hour is rendered as a UTC ISO string truncated to the hour.
type HourlyCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// SurveyAggregate is the trailing 24h summary returned by GET /api/surveys.
type SurveyAggregate struct {
	AvgMellowOrDancey float64         `json:"avgMellowOrDancey"`
	AvgCrowded        float64         `json:"avgCrowded"`
	AvgSecurityChill  float64         `json:"avgSecurityChill"`
	AvgRatio          float64         `json:"avgRatio"`
	AvgLineSpeed      float64         `json:"avgLineSpeed"`
	Count             int             `json:"count"`
	TopComments       []SurveyComment `json:"topComments"`
	HourlySubmissions []HourlyCount   `json:"hourlySubmissions"`
}
