package store

import (
	"context"
	"database/sql"
	"time"
)

// Reminder is either one-shot (DueAt, Schedule empty) or recurring
// (Schedule holds a cron spec, LastFiredAt tracks the last firing).
type Reminder struct {
	ID          string
	PetID       string
	Title       string
	DueAt       time.Time
	Schedule    string
	LastFiredAt *time.Time
	CreatedAt   time.Time
}

func (s *Store) CreateReminder(ctx context.Context, r Reminder) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO reminders (pet_id, title, due_at, schedule) VALUES ($1,$2,$3,NULLIF($4,'')) RETURNING id`,
		r.PetID, r.Title, r.DueAt, r.Schedule).Scan(&id)
	return id, err
}

// ListReminders returns reminders for pets owned by ownerID.
func (s *Store) ListReminders(ctx context.Context, ownerID string) ([]Reminder, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.id, r.pet_id, r.title, r.due_at, COALESCE(r.schedule,''), r.last_fired_at, r.created_at
		 FROM reminders r JOIN pets p ON p.id = r.pet_id
		 WHERE p.owner_id=$1 ORDER BY r.due_at ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// ReminderOwner pairs a reminder with the owning user, for the scheduler.
type ReminderOwner struct {
	Reminder
	OwnerID string
	PetName string
}

// ListAllReminders returns every reminder with its owner, for the scheduler tick.
func (s *Store) ListAllReminders(ctx context.Context) ([]ReminderOwner, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.id, r.pet_id, r.title, r.due_at, COALESCE(r.schedule,''), r.last_fired_at, r.created_at, p.owner_id, p.name
		 FROM reminders r JOIN pets p ON p.id = r.pet_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReminderOwner
	for rows.Next() {
		var ro ReminderOwner
		if err := rows.Scan(&ro.ID, &ro.PetID, &ro.Title, &ro.DueAt, &ro.Schedule, &ro.LastFiredAt, &ro.CreatedAt, &ro.OwnerID, &ro.PetName); err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

func (s *Store) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE reminders SET last_fired_at=$1 WHERE id=$2`, at, id)
	return err
}

func (s *Store) UpdateReminder(ctx context.Context, ownerID string, r Reminder) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE reminders SET title=$1, due_at=$2, schedule=NULLIF($3,'')
		 WHERE id=$4 AND pet_id IN (SELECT id FROM pets WHERE owner_id=$5)`,
		r.Title, r.DueAt, r.Schedule, r.ID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, id, ownerID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM reminders WHERE id=$1 AND pet_id IN (SELECT id FROM pets WHERE owner_id=$2)`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.PetID, &r.Title, &r.DueAt, &r.Schedule, &r.LastFiredAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
