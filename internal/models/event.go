package models

import (
	"time"
)

// Wire formats for event scheduling fields.
const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04"
)

// Event is a campus event. Events are immutable once created.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Location    string    `json:"location" db:"location"`
	Tags        []string  `json:"tags" db:"tags"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Schedule parses the event's date and time into a single instant in UTC.
// ok is false when either field is missing or malformed.
func (e Event) Schedule() (at time.Time, ok bool) {
	if e.Date == "" || e.Time == "" {
		return time.Time{}, false
	}
	day, err := time.Parse(EventDateLayout, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	clock, err := time.Parse(EventTimeLayout, e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), true
}
