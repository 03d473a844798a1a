package model

import "time"

// SyncWatermark records one completed event sync. The table is append-only.
type SyncWatermark struct {
	ID           uint64    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	EventsSynced int       `json:"eventsSynced"`
}
