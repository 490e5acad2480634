// Package recommend builds the personalized campus event feed.
package recommend

import (
	"campusbuddy/internal/models"
	"sort"
	"strings"
	"time"
)

// Recommender filters events by interest and orders them by date and time.
// It is stateless and safe for concurrent use.
type Recommender struct {
	limit int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLimit caps the feed length. Zero or negative means unlimited.
func WithLimit(limit int) Option {
	return func(r *Recommender) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

func New(opts ...Option) *Recommender {
	r := &Recommender{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scheduled struct {
	event models.Event
	at    time.Time
}

// FilterAndSort keeps the events whose tags share at least one value with
// interests (compared case-insensitively) and orders them by (date, time)
// ascending. Events with a missing or malformed date, time or tag set are
// dropped. Ties keep their input order.
func (r *Recommender) FilterAndSort(events []models.Event, interests []string) []models.Event {
	return r.filterAndSort(events, interests, time.Time{})
}

// Upcoming is FilterAndSort restricted to events on or after from.
func (r *Recommender) Upcoming(events []models.Event, interests []string, from models.Date) []models.Event {
	return r.filterAndSort(events, interests, from.Time())
}

// SortBySchedule orders well-formed events by (date, time) without any
// interest filter.
func (r *Recommender) SortBySchedule(events []models.Event) []models.Event {
	kept := make([]scheduled, 0, len(events))
	for _, event := range events {
		if at, ok := wellFormed(event); ok {
			kept = append(kept, scheduled{event: event, at: at})
		}
	}
	return r.order(kept)
}

func (r *Recommender) filterAndSort(events []models.Event, interests []string, from time.Time) []models.Event {
	wanted := foldSet(interests)
	if len(wanted) == 0 {
		return []models.Event{}
	}

	kept := make([]scheduled, 0, len(events))
	for _, event := range events {
		at, ok := wellFormed(event)
		if !ok {
			continue
		}
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !sharesTag(event.Tags, wanted) {
			continue
		}
		kept = append(kept, scheduled{event: event, at: at})
	}
	return r.order(kept)
}

func (r *Recommender) order(kept []scheduled) []models.Event {
	sort.SliceStable(kept, func(left, right int) bool {
		return kept[left].at.Before(kept[right].at)
	})

	if r.limit > 0 && len(kept) > r.limit {
		kept = kept[:r.limit]
	}

	out := make([]models.Event, len(kept))
	for i, s := range kept {
		out[i] = s.event
	}
	return out
}

func wellFormed(event models.Event) (time.Time, bool) {
	if len(models.NormalizeSet(event.Tags)) == 0 {
		return time.Time{}, false
	}
	return event.Schedule()
}

func sharesTag(tags []string, wanted map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := wanted[fold(tag)]; ok {
			return true
		}
	}
	return false
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := fold(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
