package store

import (
	"context"
	"time"
)

type Meal struct {
	ID          string
	PetID       string
	Name        string
	FoodType    string
	AmountGrams float64
	FedAt       time.Time
	Notes       string
}

func (s *Store) CreateMeal(ctx context.Context, m Meal) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO meals (pet_id, name, food_type, amount_grams, fed_at, notes) VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		m.PetID, m.Name, m.FoodType, m.AmountGrams, m.FedAt, m.Notes).Scan(&id)
	return id, err
}

func (s *Store) ListMeals(ctx context.Context, petID string) ([]Meal, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, name, food_type, amount_grams, fed_at, notes FROM meals WHERE pet_id=$1 ORDER BY fed_at DESC`,
		petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.ID, &m.PetID, &m.Name, &m.FoodType, &m.AmountGrams, &m.FedAt, &m.Notes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMeal(ctx context.Context, m Meal) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE meals SET name=$1, food_type=$2, amount_grams=$3, fed_at=$4, notes=$5 WHERE id=$6 AND pet_id=$7`,
		m.Name, m.FoodType, m.AmountGrams, m.FedAt, m.Notes, m.ID, m.PetID)
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

func (s *Store) DeleteMeal(ctx context.Context, id, petID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM meals WHERE id=$1 AND pet_id=$2`, id, petID)
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
