package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Pet struct {
	ID        string
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	PhotoURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) CreatePet(ctx context.Context, p Pet) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO pets (owner_id, name, species, breed, birth_date, photo_url) VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		p.OwnerID, p.Name, p.Species, p.Breed, p.BirthDate, p.PhotoURL).Scan(&id)
	return id, err
}

func (s *Store) ListPets(ctx context.Context, ownerID string) ([]Pet, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, owner_id, name, species, breed, birth_date, photo_url, created_at, updated_at FROM pets WHERE owner_id=$1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Pet
	for rows.Next() {
		var p Pet
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPet returns the pet only when it belongs to ownerID; ErrNotFound otherwise.
func (s *Store) GetPet(ctx context.Context, petID, ownerID string) (Pet, error) {
	var p Pet
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, owner_id, name, species, breed, birth_date, photo_url, created_at, updated_at FROM pets WHERE id=$1 AND owner_id=$2`,
		petID, ownerID).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Pet{}, ErrNotFound
	}
	return p, err
}

// VerifyPetOwnership is the ownership gate used by the chat facade.
func (s *Store) VerifyPetOwnership(ctx context.Context, petID, ownerID string) error {
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM pets WHERE id=$1 AND owner_id=$2`, petID, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) UpdatePet(ctx context.Context, p Pet) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE pets SET name=$1, species=$2, breed=$3, birth_date=$4, photo_url=$5, updated_at=now() WHERE id=$6 AND owner_id=$7`,
		p.Name, p.Species, p.Breed, p.BirthDate, p.PhotoURL, p.ID, p.OwnerID)
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

func (s *Store) DeletePet(ctx context.Context, petID, ownerID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM pets WHERE id=$1 AND owner_id=$2`, petID, ownerID)
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
