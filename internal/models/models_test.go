package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeSet(t *testing.T) {
	got := NormalizeSet([]string{" AI ", "Python", "", "AI", "python", "  "})
	want := []string{"AI", "Python", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if NormalizeSet(nil) == nil {
		t.Fatalf("expected non-nil empty slice")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.March, 1)
	if got := d.AddDays(-1); got != NewDate(2025, time.February, 28) {
		t.Fatalf("expected 2025-02-28, got %s", got)
	}
	if got := NewDate(2025, time.January, 1).DaysSince(NewDate(2024, time.December, 31)); got != 1 {
		t.Fatalf("expected 1 day, got %d", got)
	}
	if !NewDate(2025, time.January, 1).Before(NewDate(2025, time.January, 2)) {
		t.Fatalf("expected Before to hold")
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	instant := time.Date(2025, time.November, 10, 21, 0, 0, 0, time.UTC)
	if got := DateOf(instant, loc); got != NewDate(2025, time.November, 11) {
		t.Fatalf("expected 2025-11-11 in UTC+5, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	payload, err := json.Marshal(NewDate(2025, time.November, 5))
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(payload) != `"2025-11-05"` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var back Date
	if err := json.Unmarshal(payload, &back); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if back != NewDate(2025, time.November, 5) {
		t.Fatalf("unexpected date %s", back)
	}
}

func TestEventSchedule(t *testing.T) {
	at, ok := Event{Date: "2025-11-15", Time: "14:30"}.Schedule()
	if !ok {
		t.Fatalf("expected valid schedule")
	}
	if !at.Equal(time.Date(2025, time.November, 15, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected schedule %v", at)
	}

	for _, e := range []Event{
		{Date: "", Time: "14:00"},
		{Date: "2025-11-15", Time: ""},
		{Date: "15/11/2025", Time: "14:00"},
		{Date: "2025-11-15", Time: "2pm"},
	} {
		if _, ok := e.Schedule(); ok {
			t.Fatalf("expected %+v to be rejected", e)
		}
	}
}
