package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/oalvarez/petfolio/internal/store"
)

// Scheduler turns due reminders into notifications. One-shot reminders fire
// once at due_at; recurring reminders follow their cron schedule against
// last_fired_at. A redis SetNX lock avoids duplicate firings when several
// instances run.
type Scheduler struct {
	Store  *store.Store
	Stop   chan struct{}
	Rdb    *redis.Client
	Logger *log.Logger
}

func (s *Scheduler) Start() {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	now := time.Now()
	reminders, err := s.Store.ListAllReminders(ctx)
	if err != nil {
		s.Logger.Printf("list reminders: %v", err)
		return
	}
	for _, r := range reminders {
		if !reminderDue(r.Reminder, now) {
			continue
		}
		if s.Rdb != nil {
			lockKey := "sched:lock:reminder:" + r.ID
			ok, _ := s.Rdb.SetNX(ctx, lockKey, "1", 2*time.Minute).Result()
			if !ok {
				continue
			}
		}
		_, err := s.Store.CreateNotification(ctx, store.Notification{
			UserID: r.OwnerID,
			Title:  "Reminder: " + r.Title,
			Body:   fmt.Sprintf("%s is due for %s.", r.PetName, r.Title),
		})
		if err != nil {
			s.Logger.Printf("notify reminder %s: %v", r.ID, err)
			continue
		}
		if err := s.Store.MarkReminderFired(ctx, r.ID, now); err != nil {
			s.Logger.Printf("mark reminder %s fired: %v", r.ID, err)
		}
	}
}

// reminderDue decides whether a reminder should fire now.
// Supports "@daily", "@hourly", and standard 5-field cron expressions.
func reminderDue(r store.Reminder, now time.Time) bool {
	if r.Schedule == "" {
		return r.LastFiredAt == nil && !r.DueAt.After(now)
	}
	if r.LastFiredAt == nil {
		return !r.DueAt.After(now)
	}
	last := *r.LastFiredAt
	switch r.Schedule {
	case "@daily":
		return now.Sub(last) >= 24*time.Hour
	case "@hourly":
		return now.Sub(last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(r.Schedule)
		if err != nil {
			return false
		}
		next := expr.Next(last)
		return !next.After(now)
	}
}
