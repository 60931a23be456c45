package server

import (
	"testing"
	"time"

	"github.com/oalvarez/petfolio/internal/store"
)

func TestReminderDueOneShot(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fired := now.Add(-time.Hour)

	cases := []struct {
		name string
		r    store.Reminder
		want bool
	}{
		{"past due never fired", store.Reminder{DueAt: now.Add(-time.Minute)}, true},
		{"not yet due", store.Reminder{DueAt: now.Add(time.Minute)}, false},
		{"already fired", store.Reminder{DueAt: now.Add(-time.Hour), LastFiredAt: &fired}, false},
	}
	for _, tc := range cases {
		if got := reminderDue(tc.r, now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReminderDueRecurring(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dayAgo := now.Add(-25 * time.Hour)
	justNow := now.Add(-10 * time.Minute)

	cases := []struct {
		name string
		r    store.Reminder
		want bool
	}{
		{"daily elapsed", store.Reminder{Schedule: "@daily", DueAt: dayAgo, LastFiredAt: &dayAgo}, true},
		{"daily recent", store.Reminder{Schedule: "@daily", DueAt: dayAgo, LastFiredAt: &justNow}, false},
		{"hourly elapsed", store.Reminder{Schedule: "@hourly", DueAt: dayAgo, LastFiredAt: &dayAgo}, true},
		{"cron elapsed", store.Reminder{Schedule: "0 9 * * *", DueAt: dayAgo, LastFiredAt: &dayAgo}, true},
		{"cron not elapsed", store.Reminder{Schedule: "0 9 * * *", DueAt: dayAgo, LastFiredAt: &justNow}, false},
		{"recurring never fired, due", store.Reminder{Schedule: "@daily", DueAt: now.Add(-time.Minute)}, true},
		{"invalid cron", store.Reminder{Schedule: "not a cron", DueAt: dayAgo, LastFiredAt: &dayAgo}, false},
	}
	for _, tc := range cases {
		if got := reminderDue(tc.r, now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
