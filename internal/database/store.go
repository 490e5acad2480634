// Package database holds the DataStore implementations: PostgreSQL for
// production and an in-memory store for development and tests.
package database

import (
	"campusbuddy/internal/models"
	"context"
)

// Store is the repository the API reads snapshots from and writes through.
//
// Implementations return errors wrapping apperr.ErrNotFound,
// apperr.ErrDuplicate, apperr.ErrAlreadyCheckedIn and apperr.ErrAlreadyJoined
// where applicable.
type Store interface {
	// CreateUser inserts user, assigning an ID when empty. Emails are unique
	// case-insensitively.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error)

	// CreateEvent inserts event, assigning an ID when empty.
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	// JoinEvent records the user's attendance and adds points once per
	// (user, event). A repeated join fails with apperr.ErrAlreadyJoined and
	// awards nothing.
	JoinEvent(ctx context.Context, userID, eventID string, points int) (models.User, error)

	// ApplyCheckin atomically adds update.Points, sets the streak and
	// LastCheckinDate, and stores update.Record. It fails with
	// apperr.ErrAlreadyCheckedIn if the user's LastCheckinDate differs from
	// update.PreviousDate or a record already exists for the day.
	ApplyCheckin(ctx context.Context, update models.CheckinUpdate) (models.User, error)
	// ListCheckins returns at most limit records, newest first. limit <= 0
	// means no limit.
	ListCheckins(ctx context.Context, userID string, limit int) ([]models.CheckinRecord, error)

	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

// Stats are row counts used by monitoring.
type Stats struct {
	Users    int64 `json:"users_total"`
	Events   int64 `json:"events_total"`
	Checkins int64 `json:"checkins_total"`
}
