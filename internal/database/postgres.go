package database

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, name, email, password, role, skills, interests, points, streak, last_checkin_date, created_at`

const eventColumns = `id, title, date, time, location, tags, description, COALESCE(created_by::text, ''), created_at`

// PostgresStore implements Store on PostgreSQL through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB returns the underlying pool.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var last sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		pq.Array(&user.Skills),
		pq.Array(&user.Interests),
		&user.Points,
		&user.Streak,
		&last,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	if last.Valid {
		d := models.DateOf(last.Time, last.Time.Location())
		user.LastCheckinDate = &d
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}
	return user, nil
}

func scanEvent(row rowScanner) (models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.Time,
		&event.Location,
		pq.Array(&event.Tags),
		&event.Description,
		&event.CreatedBy,
		&event.CreatedAt,
	)
	return event, err
}

func isUniqueViolation(err error) bool {
	return hasPQCode(err, uniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasPQCode(err, foreignKeyViolation)
}

func hasPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func (s *PostgresStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}

	query := `INSERT INTO users (id, name, email, password, role, skills, interests)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	created, err := scanUser(s.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		models.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.Role,
		pq.Array(models.NormalizeSet(user.Skills)),
		pq.Array(models.NormalizeSet(user.Interests)),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("user with email %s: %w", user.Email, apperr.ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = $1`,
		models.NormalizeEmail(email),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan user: %w", scanErr)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile sets only the non-nil fields; NULL parameters keep the
// current column value.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}

	var name, skills, interests any
	if update.Name != nil {
		name = *update.Name
	}
	if update.Skills != nil {
		skills = pq.Array(models.NormalizeSet(*update.Skills))
	}
	if update.Interests != nil {
		interests = pq.Array(models.NormalizeSet(*update.Interests))
	}

	query := `UPDATE users
		SET name = COALESCE($2::text, name),
			skills = COALESCE($3::text[], skills),
			interests = COALESCE($4::text[], interests)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID, name, skills, interests))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var createdBy any
	if event.CreatedBy != "" {
		createdBy = event.CreatedBy
	}

	query := `INSERT INTO events (id, title, date, time, location, tags, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns
	created, err := scanEvent(s.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Date,
		event.Time,
		event.Location,
		pq.Array(models.NormalizeSet(event.Tags)),
		event.Description,
		createdBy,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Event{}, fmt.Errorf("event %s: %w", event.ID, apperr.ErrDuplicate)
		}
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan event: %w", scanErr)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// JoinEvent inserts the attendance row and credits points in one transaction.
// The unique (user_id, event_id) key makes a repeated join a no-op.
func (s *PostgresStore) JoinEvent(ctx context.Context, userID, eventID string, points int) (models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if _, err := uuid.Parse(eventID); err != nil {
		return models.User{}, fmt.Errorf("event %s: %w", eventID, apperr.ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("begin join transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO event_joins (user_id, event_id, points_awarded)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, event_id) DO NOTHING`,
		userID,
		eventID,
		points,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.User{}, fmt.Errorf("user %s event %s: %w", userID, eventID, apperr.ErrNotFound)
		}
		return models.User{}, fmt.Errorf("insert event join: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return models.User{}, fmt.Errorf("insert event join: %w", err)
	}
	if inserted == 0 {
		return models.User{}, fmt.Errorf("user %s event %s: %w", userID, eventID, apperr.ErrAlreadyJoined)
	}

	user, err := scanUser(tx.QueryRowContext(ctx,
		`UPDATE users SET points = points + $1 WHERE id = $2 RETURNING `+userColumns,
		points,
		userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("credit join points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("commit event join: %w", err)
	}
	return user, nil
}

// ApplyCheckin runs the conditional update and the record insert in one
// transaction. The WHERE clause on last_checkin_date is the compare-and-set.
func (s *PostgresStore) ApplyCheckin(ctx context.Context, update models.CheckinUpdate) (models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("begin check-in transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE users
		SET points = points + $1, streak = $2, last_checkin_date = $3
		WHERE id = $4 AND last_checkin_date IS NOT DISTINCT FROM $5::date
		RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, updateQuery,
		update.Points,
		update.Streak,
		update.Date,
		update.UserID,
		update.PreviousDate,
	))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if existsErr := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, update.UserID).Scan(&exists); existsErr != nil {
			return models.User{}, fmt.Errorf("check user existence: %w", existsErr)
		}
		if !exists {
			return models.User{}, fmt.Errorf("user %s: %w", update.UserID, apperr.ErrNotFound)
		}
		return models.User{}, fmt.Errorf("user %s on %s: %w", update.UserID, update.Date, apperr.ErrAlreadyCheckedIn)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user check-in: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO checkins (user_id, checkin_date, mood, tip, points_awarded)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, checkin_date) DO NOTHING`,
		update.UserID,
		update.Date,
		update.Record.Mood,
		update.Record.Tip,
		update.Record.PointsAwarded,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("insert check-in: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return models.User{}, fmt.Errorf("insert check-in: %w", err)
	}
	if inserted == 0 {
		return models.User{}, fmt.Errorf("user %s on %s: %w", update.UserID, update.Date, apperr.ErrAlreadyCheckedIn)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("commit check-in: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) ListCheckins(ctx context.Context, userID string, limit int) ([]models.CheckinRecord, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []models.CheckinRecord{}, nil
	}

	query := `SELECT user_id, checkin_date, mood, tip, points_awarded, created_at
		FROM checkins
		WHERE user_id = $1
		ORDER BY checkin_date DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	records := make([]models.CheckinRecord, 0)
	for rows.Next() {
		var record models.CheckinRecord
		if scanErr := rows.Scan(
			&record.UserID,
			&record.Date,
			&record.Mood,
			&record.Tip,
			&record.PointsAwarded,
			&record.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan check-in: %w", scanErr)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM checkins)
	`).Scan(&stats.Users, &stats.Events, &stats.Checkins)
	if err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
