package models

import (
	"time"
)

// Recording is one Adobe Connect archive of a conference meeting. Live
// results from the archive catalog carry no local ID; rows synced into the
// database by the worker do.
type Recording struct {
	ID              int64     `json:"id,omitempty"`
	ConferenceID    int64     `json:"conference_id"`
	ScoID           string    `json:"recording_id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	PlaybackURL     string    `json:"playback_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	SyncedAt        time.Time `json:"synced_at,omitempty"`
}
