package models

import "time"

// Recognized moods.
const (
	MoodHappy    = "Happy"
	MoodNeutral  = "Neutral"
	MoodStressed = "Stressed"
)

// CheckinRecord is the persisted trace of one wellness check-in.
// There is at most one record per (UserID, Date).
type CheckinRecord struct {
	UserID        string    `json:"userId" db:"user_id"`
	Date          Date      `json:"date" db:"checkin_date"`
	Mood          string    `json:"mood" db:"mood"`
	Tip           string    `json:"tip" db:"tip"`
	PointsAwarded int       `json:"pointsAwarded" db:"points_awarded"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// CheckinUpdate is the mutation a store applies for a first check-in of the day.
// PreviousDate is the LastCheckinDate the decision was based on and is used as
// the compare-and-set guard.
type CheckinUpdate struct {
	UserID       string
	PreviousDate *Date
	Date         Date
	Points       int
	Streak       int
	Record       CheckinRecord
}
