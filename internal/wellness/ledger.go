package wellness

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults for Policy.
const (
	DefaultCheckinPoints = 10
	DefaultMaxGapDays    = 1
	maxMoodLength        = 32
	maxTipLength         = 500
)

// Policy holds the gamification rules of a check-in.
type Policy struct {
	// Points awarded for the first check-in of a day.
	Points int
	// MaxGapDays is the largest number of days between two check-ins that
	// still continues a streak. 1 means the previous check-in must be yesterday.
	MaxGapDays int
}

func DefaultPolicy() Policy {
	return Policy{Points: DefaultCheckinPoints, MaxGapDays: DefaultMaxGapDays}
}

// Outcome is the pure decision for one check-in attempt.
type Outcome struct {
	AlreadyCheckedIn bool
	PointsAwarded    int
	Streak           int
	// Update is nil when AlreadyCheckedIn is true.
	Update *models.CheckinUpdate
}

// Decide applies policy to user for a check-in on today. It does not mutate
// user.
func Decide(user models.User, mood, tip string, today models.Date, policy Policy) Outcome {
	last := user.LastCheckinDate
	if last != nil && *last == today {
		return Outcome{AlreadyCheckedIn: true, Streak: user.Streak}
	}

	streak := 1
	if last != nil && last.Before(today) && today.DaysSince(*last) <= policy.MaxGapDays {
		streak = user.Streak + 1
	}

	return Outcome{
		PointsAwarded: policy.Points,
		Streak:        streak,
		Update: &models.CheckinUpdate{
			UserID:       user.ID,
			PreviousDate: last,
			Date:         today,
			Points:       policy.Points,
			Streak:       streak,
			Record: models.CheckinRecord{
				UserID:        user.ID,
				Date:          today,
				Mood:          mood,
				Tip:           tip,
				PointsAwarded: policy.Points,
			},
		},
	}
}

// Store is the persistence the ledger needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	// ApplyCheckin must fail with apperr.ErrAlreadyCheckedIn when the user's
	// LastCheckinDate no longer equals update.PreviousDate or a record for
	// (UserID, Date) already exists.
	ApplyCheckin(ctx context.Context, update models.CheckinUpdate) (models.User, error)
	ListCheckins(ctx context.Context, userID string, limit int) ([]models.CheckinRecord, error)
}

// Observer receives check-in outcomes, e.g. for metrics.
type Observer interface {
	ObserveCheckin(alreadyCheckedIn bool, pointsAwarded int)
}

// Result is returned to API callers.
type Result struct {
	PointsAwarded    int         `json:"pointsAwarded"`
	Streak           int         `json:"streak"`
	Points           int         `json:"points"`
	AlreadyCheckedIn bool        `json:"alreadyCheckedIn"`
	Date             models.Date `json:"date"`
	Tip              string      `json:"tip"`
}

// Ledger records check-ins. Concurrent calls for the same user are
// serialized; the store's compare-and-set guards against other processes.
type Ledger struct {
	store    Store
	advisor  *Advisor
	policy   Policy
	now      func() time.Time
	location *time.Location
	locks    *keyedMutex
	observer Observer
	logger   *zap.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithPolicy replaces the default policy. Non-positive fields keep defaults.
func WithPolicy(p Policy) LedgerOption {
	return func(l *Ledger) {
		if p.Points > 0 {
			l.policy.Points = p.Points
		}
		if p.MaxGapDays > 0 {
			l.policy.MaxGapDays = p.MaxGapDays
		}
	}
}

// WithClock sets the time source and the zone that defines a calendar day.
func WithClock(now func() time.Time, loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
		if loc != nil {
			l.location = loc
		}
	}
}

func WithObserver(o Observer) LedgerOption {
	return func(l *Ledger) { l.observer = o }
}

func WithLogger(logger *zap.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLedger(store Store, advisor *Advisor, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:    store,
		advisor:  advisor,
		policy:   DefaultPolicy(),
		now:      time.Now,
		location: time.UTC,
		locks:    newKeyedMutex(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the active policy.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// Today returns the current calendar day in the ledger's zone.
func (l *Ledger) Today() models.Date {
	return models.DateOf(l.now(), l.location)
}

// RecordCheckin awards points for the user's first check-in of the day and
// reports AlreadyCheckedIn for any later one. An empty tip is replaced with
// the advisor's tip for mood.
func (l *Ledger) RecordCheckin(ctx context.Context, userID, mood, tip string) (Result, error) {
	mood = strings.TrimSpace(mood)
	tip = strings.TrimSpace(tip)
	if mood == "" {
		return Result{}, apperr.Invalid("mood", "is required")
	}
	if len(mood) > maxMoodLength {
		return Result{}, apperr.Invalid("mood", "must be at most %d characters", maxMoodLength)
	}
	if len(tip) > maxTipLength {
		return Result{}, apperr.Invalid("tip", "must be at most %d characters", maxTipLength)
	}
	if tip == "" {
		tip = l.advisor.GetTip(mood).Tip
	}

	unlock := l.locks.Lock(userID)
	defer unlock()

	user, err := l.store.GetUserByID(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load user for check-in: %w", err)
	}

	today := l.Today()
	outcome := Decide(user, mood, tip, today, l.policy)
	if outcome.AlreadyCheckedIn {
		l.observe(true, 0)
		return Result{Streak: user.Streak, Points: user.Points, AlreadyCheckedIn: true, Date: today, Tip: tip}, nil
	}

	updated, err := l.store.ApplyCheckin(ctx, *outcome.Update)
	if errors.Is(err, apperr.ErrAlreadyCheckedIn) {
		// Another process won the compare-and-set.
		current, getErr := l.store.GetUserByID(ctx, userID)
		if getErr != nil {
			return Result{}, fmt.Errorf("reload user after lost check-in race: %w", getErr)
		}
		l.logger.Info("check-in lost compare-and-set", zap.String("user_id", userID), zap.Stringer("date", today))
		l.observe(true, 0)
		return Result{Streak: current.Streak, Points: current.Points, AlreadyCheckedIn: true, Date: today, Tip: tip}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("apply check-in: %w", err)
	}

	l.logger.Info("check-in recorded",
		zap.String("user_id", userID),
		zap.Stringer("date", today),
		zap.Int("points_awarded", outcome.PointsAwarded),
		zap.Int("streak", updated.Streak),
	)
	l.observe(false, outcome.PointsAwarded)

	return Result{
		PointsAwarded: outcome.PointsAwarded,
		Streak:        updated.Streak,
		Points:        updated.Points,
		Date:          today,
		Tip:           tip,
	}, nil
}

// History returns the user's most recent check-ins, newest first.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]models.CheckinRecord, error) {
	records, err := l.store.ListCheckins(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return records, nil
}

func (l *Ledger) observe(already bool, points int) {
	if l.observer != nil {
		l.observer.ObserveCheckin(already, points)
	}
}
