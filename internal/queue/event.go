// Package queue defines message payloads exchanged over the message broker
// and the consumer that records completed syncs.
package queue

// Queue names. Both are durable.
const (
	EventsSyncedQueue    = "events.synced"
	SurveySubmittedQueue = "survey.submitted"
)

// SyncCompletedEvent is published after an event sync lands its rows and
// watermark.
type SyncCompletedEvent struct {
	Count           int      `json:"count"`
	IDs             []string `json:"ids"`
	UnmatchedVenues []string `json:"unmatched_venues"`
	SyncedAt        string   `json:"synced_at"`
}

// SurveySubmittedEvent is published after a survey insert.
type SurveySubmittedEvent struct {
	SurveyID    string `json:"survey_id"`
	VenueID     string `json:"venue_id"`
	SubmittedAt string `json:"submitted_at"`
}
