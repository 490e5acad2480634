package database

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. All methods are safe for
// concurrent use and return copies, never internal state.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	emails   map[string]string
	events   []models.Event
	checkins map[string][]models.CheckinRecord
	joins    map[string]map[string]bool
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		checkins: make(map[string][]models.CheckinRecord),
		joins:    make(map[string]map[string]bool),
		now:      time.Now,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	if _, exists := s.emails[user.Email]; exists {
		return models.User{}, fmt.Errorf("user with email %s: %w", user.Email, apperr.ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := s.users[user.ID]; exists {
		return models.User{}, fmt.Errorf("user %s: %w", user.ID, apperr.ErrDuplicate)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	user.Skills = models.NormalizeSet(user.Skills)
	user.Interests = models.NormalizeSet(user.Interests)

	s.users[user.ID] = user.Clone()
	s.emails[user.Email] = user.ID
	return user.Clone(), nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return user.Clone(), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[models.NormalizeEmail(email)]
	if !ok {
		return models.User{}, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	return s.users[id].Clone(), nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user.Clone())
	}
	sort.Slice(out, func(left, right int) bool { return out[left].ID < out[right].ID })
	return out, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	update.Apply(&user)
	s.users[userID] = user.Clone()
	return user.Clone(), nil
}

func (s *MemoryStore) CreateEvent(_ context.Context, event models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	for _, existing := range s.events {
		if existing.ID == event.ID {
			return models.Event{}, fmt.Errorf("event %s: %w", event.ID, apperr.ErrDuplicate)
		}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	event.Tags = models.NormalizeSet(event.Tags)

	s.events = append(s.events, cloneEvent(event))
	return cloneEvent(event), nil
}

func (s *MemoryStore) ListEvents(_ context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	for i, event := range s.events {
		out[i] = cloneEvent(event)
	}
	return out, nil
}

func (s *MemoryStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, event := range s.events {
		if event.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			for _, joined := range s.joins {
				delete(joined, id)
			}
			return nil
		}
	}
	return fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
}

func (s *MemoryStore) JoinEvent(_ context.Context, userID, eventID string, points int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if !s.hasEvent(eventID) {
		return models.User{}, fmt.Errorf("event %s: %w", eventID, apperr.ErrNotFound)
	}
	if s.joins[userID][eventID] {
		return models.User{}, fmt.Errorf("user %s event %s: %w", userID, eventID, apperr.ErrAlreadyJoined)
	}

	if s.joins[userID] == nil {
		s.joins[userID] = make(map[string]bool)
	}
	s.joins[userID][eventID] = true
	user.Points += points
	s.users[userID] = user
	return user.Clone(), nil
}

func (s *MemoryStore) hasEvent(id string) bool {
	for _, event := range s.events {
		if event.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ApplyCheckin(_ context.Context, update models.CheckinUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[update.UserID]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", update.UserID, apperr.ErrNotFound)
	}
	if !sameDate(user.LastCheckinDate, update.PreviousDate) {
		return models.User{}, fmt.Errorf("user %s on %s: %w", update.UserID, update.Date, apperr.ErrAlreadyCheckedIn)
	}
	for _, record := range s.checkins[update.UserID] {
		if record.Date == update.Date {
			return models.User{}, fmt.Errorf("user %s on %s: %w", update.UserID, update.Date, apperr.ErrAlreadyCheckedIn)
		}
	}

	date := update.Date
	user.Points += update.Points
	user.Streak = update.Streak
	user.LastCheckinDate = &date
	s.users[user.ID] = user

	record := update.Record
	record.UserID = update.UserID
	record.Date = update.Date
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	s.checkins[update.UserID] = append(s.checkins[update.UserID], record)

	return user.Clone(), nil
}

func (s *MemoryStore) ListCheckins(_ context.Context, userID string, limit int) ([]models.CheckinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.checkins[userID]
	out := make([]models.CheckinRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, records[i])
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Users: int64(len(s.users)), Events: int64(len(s.events))}
	for _, records := range s.checkins {
		stats.Checkins += int64(len(records))
	}
	return stats, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func sameDate(a, b *models.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneEvent(event models.Event) models.Event {
	event.Tags = append([]string(nil), event.Tags...)
	return event
}
