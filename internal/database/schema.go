package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateTables creates all required tables in the database.
func CreateTables(ctx context.Context, db *sql.DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"users table", createUsersTable},
		{"users email index", `CREATE UNIQUE INDEX IF NOT EXISTS users_lower_email_unique ON users(lower(email))`},
		{"events table", createEventsTable},
		{"events schedule index", `CREATE INDEX IF NOT EXISTS events_date_time_idx ON events(date, time)`},
		{"checkins table", createCheckinsTable},
		{"checkins user/date index", `CREATE INDEX IF NOT EXISTS checkins_user_date_idx ON checkins(user_id, checkin_date DESC)`},
		{"event joins table", createEventJoinsTable},
	}

	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.query); err != nil {
			return fmt.Errorf("failed to ensure %s: %w", step.name, err)
		}
	}
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'student',
	skills TEXT[] NOT NULL DEFAULT '{}',
	interests TEXT[] NOT NULL DEFAULT '{}',
	points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
	streak INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
	last_checkin_date DATE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Dates and times are stored in their wire formats (YYYY-MM-DD, HH:MM), which
// sort lexically in schedule order.
const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	date VARCHAR(10) NOT NULL,
	time VARCHAR(5) NOT NULL,
	location VARCHAR(255) NOT NULL,
	tags TEXT[] NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by UUID REFERENCES users(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const createCheckinsTable = `
CREATE TABLE IF NOT EXISTS checkins (
	id SERIAL PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	checkin_date DATE NOT NULL,
	mood VARCHAR(32) NOT NULL,
	tip TEXT NOT NULL DEFAULT '',
	points_awarded INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, checkin_date)
);
`

const createEventJoinsTable = `
CREATE TABLE IF NOT EXISTS event_joins (
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	points_awarded INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, event_id)
);
`
