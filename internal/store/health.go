package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Vaccination struct {
	ID             string
	PetID          string
	Name           string
	AdministeredAt time.Time
	NextDue        *time.Time
	Notes          string
}

func (s *Store) CreateVaccination(ctx context.Context, v Vaccination) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO vaccinations (pet_id, name, administered_at, next_due, notes) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		v.PetID, v.Name, v.AdministeredAt, v.NextDue, v.Notes).Scan(&id)
	return id, err
}

func (s *Store) ListVaccinations(ctx context.Context, petID string) ([]Vaccination, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, name, administered_at, next_due, notes FROM vaccinations WHERE pet_id=$1 ORDER BY administered_at DESC`,
		petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Vaccination
	for rows.Next() {
		var v Vaccination
		if err := rows.Scan(&v.ID, &v.PetID, &v.Name, &v.AdministeredAt, &v.NextDue, &v.Notes); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetVaccination(ctx context.Context, id, petID string) (Vaccination, error) {
	var v Vaccination
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, pet_id, name, administered_at, next_due, notes FROM vaccinations WHERE id=$1 AND pet_id=$2`,
		id, petID).Scan(&v.ID, &v.PetID, &v.Name, &v.AdministeredAt, &v.NextDue, &v.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Vaccination{}, ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateVaccination(ctx context.Context, v Vaccination) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE vaccinations SET name=$1, administered_at=$2, next_due=$3, notes=$4 WHERE id=$5 AND pet_id=$6`,
		v.Name, v.AdministeredAt, v.NextDue, v.Notes, v.ID, v.PetID)
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

func (s *Store) DeleteVaccination(ctx context.Context, id, petID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM vaccinations WHERE id=$1 AND pet_id=$2`, id, petID)
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
