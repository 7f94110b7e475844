package models

import (
	"time"
)

// ConferenceStatus is the derived lifecycle state of a conference. It is
// never stored: the remote existence probe is authoritative.
type ConferenceStatus string

const (
	ConferenceActive ConferenceStatus = "active"
	ConferenceClosed ConferenceStatus = "closed"
)

// Settings is the mutable per-conference settings bag, persisted as JSONB.
type Settings map[string]string

// SettingMeetingURLID caches the remote URL suffix once a meeting has been
// created. Once set it is never regenerated: it is the durable external
// identity of the meeting.
const SettingMeetingURLID = "meeting_url_id"

// Conference is the LMS web-conference record this bridge provisions on
// Adobe Connect.
type Conference struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	CourseCode          string     `json:"course_code,omitempty"`
	ParentCourseCode    string     `json:"parent_course_code,omitempty"`
	RootAccountGlobalID int64      `json:"root_account_global_id"`
	ConferenceKey       string     `json:"conference_key,omitempty"`
	StartAt             time.Time  `json:"start_at"`
	EndAt               *time.Time `json:"end_at,omitempty"`
	CreatedBy           int64      `json:"created_by"`
	Settings            Settings   `json:"settings,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CourseLabel returns the course code from the conference context, its
// parent context, or the literal fallback when neither exposes one.
func (c *Conference) CourseLabel() string {
	if c.CourseCode != "" {
		return c.CourseCode
	}
	if c.ParentCourseCode != "" {
		return c.ParentCourseCode
	}
	return "Canvas"
}

// Setting returns one settings-bag value, tolerating a nil bag.
func (c *Conference) Setting(key string) string {
	if c.Settings == nil {
		return ""
	}
	return c.Settings[key]
}

// SetSetting writes one settings-bag value, allocating the bag on demand.
func (c *Conference) SetSetting(key, value string) {
	if c.Settings == nil {
		c.Settings = Settings{}
	}
	c.Settings[key] = value
}
