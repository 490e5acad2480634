package wellness_test

import (
	"campusbuddy/internal/apperr"
	"campusbuddy/internal/database"
	"campusbuddy/internal/models"
	"campusbuddy/internal/wellness"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sync/errgroup"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingObserver struct {
	awarded atomic.Int64
	already atomic.Int64
}

func (o *countingObserver) ObserveCheckin(alreadyCheckedIn bool, _ int) {
	if alreadyCheckedIn {
		o.already.Add(1)
		return
	}
	o.awarded.Add(1)
}

// racingStore loses every compare-and-set, as if another process checked the
// user in between the read and the write.
type racingStore struct {
	*database.MemoryStore
}

func (s racingStore) ApplyCheckin(context.Context, models.CheckinUpdate) (models.User, error) {
	return models.User{}, apperr.ErrAlreadyCheckedIn
}

func newUser(ctx context.Context, store *database.MemoryStore) models.User {
	user, err := store.CreateUser(ctx, models.User{Name: "Asha", Email: "asha@campus.edu"})
	So(err, ShouldBeNil)
	return user
}

func TestDecide(t *testing.T) {
	Convey("Given a default policy", t, func() {
		policy := wellness.DefaultPolicy()
		today := models.NewDate(2025, time.November, 10)

		Convey("A first check-in starts a streak of one", func() {
			outcome := wellness.Decide(models.User{ID: "u1"}, "Happy", "tip", today, policy)
			So(outcome.AlreadyCheckedIn, ShouldBeFalse)
			So(outcome.PointsAwarded, ShouldEqual, 10)
			So(outcome.Streak, ShouldEqual, 1)
			So(outcome.Update.PreviousDate, ShouldBeNil)
			So(outcome.Update.Record.Mood, ShouldEqual, "Happy")
		})

		Convey("A check-in the day after extends the streak", func() {
			yesterday := today.AddDays(-1)
			outcome := wellness.Decide(models.User{ID: "u1", Streak: 4, LastCheckinDate: &yesterday}, "Happy", "tip", today, policy)
			So(outcome.Streak, ShouldEqual, 5)
			So(*outcome.Update.PreviousDate, ShouldEqual, yesterday)
		})

		Convey("A skipped day resets the streak", func() {
			earlier := today.AddDays(-2)
			outcome := wellness.Decide(models.User{ID: "u1", Streak: 4, LastCheckinDate: &earlier}, "Happy", "tip", today, policy)
			So(outcome.Streak, ShouldEqual, 1)
		})

		Convey("A wider gap is allowed when the policy says so", func() {
			earlier := today.AddDays(-2)
			outcome := wellness.Decide(models.User{ID: "u1", Streak: 4, LastCheckinDate: &earlier}, "Happy", "tip", today,
				wellness.Policy{Points: 5, MaxGapDays: 2})
			So(outcome.Streak, ShouldEqual, 5)
			So(outcome.PointsAwarded, ShouldEqual, 5)
		})

		Convey("A second check-in on the same day awards nothing", func() {
			sameDay := today
			outcome := wellness.Decide(models.User{ID: "u1", Streak: 3, LastCheckinDate: &sameDay}, "Happy", "tip", today, policy)
			So(outcome.AlreadyCheckedIn, ShouldBeTrue)
			So(outcome.PointsAwarded, ShouldEqual, 0)
			So(outcome.Streak, ShouldEqual, 3)
			So(outcome.Update, ShouldBeNil)
		})

		Convey("A last check-in in the future resets the streak", func() {
			tomorrow := today.AddDays(1)
			outcome := wellness.Decide(models.User{ID: "u1", Streak: 3, LastCheckinDate: &tomorrow}, "Happy", "tip", today, policy)
			So(outcome.Streak, ShouldEqual, 1)
		})
	})
}

func TestLedger_RecordCheckin(t *testing.T) {
	Convey("Given a ledger over an in-memory store", t, func() {
		ctx := context.Background()
		store := database.NewMemoryStore()
		clock := &fakeClock{now: time.Date(2025, time.November, 10, 9, 30, 0, 0, time.UTC)}
		observer := &countingObserver{}
		ledger := wellness.NewLedger(store, wellness.NewAdvisor(),
			wellness.WithClock(clock.Now, time.UTC),
			wellness.WithObserver(observer),
		)
		user := newUser(ctx, store)

		Convey("The first check-in of the day awards points", func() {
			result, err := ledger.RecordCheckin(ctx, user.ID, "Happy", "")
			So(err, ShouldBeNil)
			So(result.PointsAwarded, ShouldEqual, 10)
			So(result.Streak, ShouldEqual, 1)
			So(result.Points, ShouldEqual, 10)
			So(result.AlreadyCheckedIn, ShouldBeFalse)
			So(result.Date, ShouldEqual, models.NewDate(2025, time.November, 10))
			So(wellness.DefaultTips[models.MoodHappy], ShouldContain, result.Tip)

			Convey("A second check-in the same day is idempotent", func() {
				clock.Advance(10 * time.Hour)
				again, err := ledger.RecordCheckin(ctx, user.ID, "Stressed", "custom")
				So(err, ShouldBeNil)
				So(again.AlreadyCheckedIn, ShouldBeTrue)
				So(again.PointsAwarded, ShouldEqual, 0)
				So(again.Points, ShouldEqual, 10)
				So(again.Streak, ShouldEqual, 1)

				stored, _ := store.GetUserByID(ctx, user.ID)
				So(stored.Points, ShouldEqual, 10)
				So(observer.awarded.Load(), ShouldEqual, int64(1))
				So(observer.already.Load(), ShouldEqual, int64(1))
			})

			Convey("The next day extends the streak", func() {
				clock.Advance(24 * time.Hour)
				next, err := ledger.RecordCheckin(ctx, user.ID, "Neutral", "")
				So(err, ShouldBeNil)
				So(next.PointsAwarded, ShouldEqual, 10)
				So(next.Streak, ShouldEqual, 2)
				So(next.Points, ShouldEqual, 20)

				history, err := ledger.History(ctx, user.ID, 10)
				So(err, ShouldBeNil)
				So(len(history), ShouldEqual, 2)
				So(history[0].Mood, ShouldEqual, "Neutral")
				So(history[1].Mood, ShouldEqual, "Happy")
			})

			Convey("Two days later the streak restarts", func() {
				clock.Advance(48 * time.Hour)
				next, err := ledger.RecordCheckin(ctx, user.ID, "Happy", "")
				So(err, ShouldBeNil)
				So(next.Streak, ShouldEqual, 1)
				So(next.Points, ShouldEqual, 20)
			})
		})

		Convey("A provided tip is stored as given", func() {
			result, err := ledger.RecordCheckin(ctx, user.ID, "Excited", "  Call a friend.  ")
			So(err, ShouldBeNil)
			So(result.Tip, ShouldEqual, "Call a friend.")

			history, _ := ledger.History(ctx, user.ID, 0)
			So(history[0].Tip, ShouldEqual, "Call a friend.")
			So(history[0].Mood, ShouldEqual, "Excited")
		})

		Convey("A missing mood is a validation error", func() {
			_, err := ledger.RecordCheckin(ctx, user.ID, "   ", "")
			So(errors.Is(err, apperr.ErrValidation), ShouldBeTrue)
		})

		Convey("An overlong mood is a validation error", func() {
			_, err := ledger.RecordCheckin(ctx, user.ID, "This mood is far too long to be stored", "")
			So(errors.Is(err, apperr.ErrValidation), ShouldBeTrue)
		})

		Convey("An unknown user is not found", func() {
			_, err := ledger.RecordCheckin(ctx, "missing", "Happy", "")
			So(errors.Is(err, apperr.ErrNotFound), ShouldBeTrue)
		})

		Convey("Concurrent check-ins award points exactly once", func() {
			var group errgroup.Group
			var awarded atomic.Int64
			for i := 0; i < 50; i++ {
				group.Go(func() error {
					result, err := ledger.RecordCheckin(ctx, user.ID, "Happy", "")
					if err != nil {
						return err
					}
					if !result.AlreadyCheckedIn {
						awarded.Add(1)
					}
					return nil
				})
			}
			So(group.Wait(), ShouldBeNil)
			So(awarded.Load(), ShouldEqual, int64(1))

			stored, _ := store.GetUserByID(ctx, user.ID)
			So(stored.Points, ShouldEqual, 10)
			So(stored.Streak, ShouldEqual, 1)

			history, _ := ledger.History(ctx, user.ID, 0)
			So(len(history), ShouldEqual, 1)
		})
	})

	Convey("Given a store that loses the compare-and-set", t, func() {
		ctx := context.Background()
		memory := database.NewMemoryStore()
		user := newUser(ctx, memory)
		ledger := wellness.NewLedger(racingStore{memory}, wellness.NewAdvisor())

		Convey("The attempt is reported as already checked in", func() {
			result, err := ledger.RecordCheckin(ctx, user.ID, "Happy", "")
			So(err, ShouldBeNil)
			So(result.AlreadyCheckedIn, ShouldBeTrue)
			So(result.PointsAwarded, ShouldEqual, 0)
		})
	})

	Convey("Given a ledger in a zone ahead of UTC", t, func() {
		ctx := context.Background()
		store := database.NewMemoryStore()
		user := newUser(ctx, store)
		zone := time.FixedZone("IST", 5*3600+1800)
		clock := &fakeClock{now: time.Date(2025, time.November, 10, 20, 0, 0, 0, time.UTC)}
		ledger := wellness.NewLedger(store, wellness.NewAdvisor(), wellness.WithClock(clock.Now, zone))

		Convey("The calendar day follows the configured zone", func() {
			result, err := ledger.RecordCheckin(ctx, user.ID, "Happy", "")
			So(err, ShouldBeNil)
			So(result.Date, ShouldEqual, models.NewDate(2025, time.November, 11))
		})
	})
}
