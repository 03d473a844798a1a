package model

import "time"

// Event is an upcoming listing scraped from the events site and matched to a
// venue. It corresponds to a row in the `events` table.
//
// Fields:
//  ID          – source listing id, stable across syncs.
//  Title       – listing title.
//  VenueID     – matched venue; nil until matched.
//  ArtistNames – comma-joined artist names.
//  StartTime   – start, UTC.
//  EndTime     – end, UTC. Not guaranteed to be after StartTime.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	VenueID     *string   `json:"venueId"`
	ArtistNames string    `json:"artistNames"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}
