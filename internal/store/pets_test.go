package store

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestVerifyPetOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	mock.ExpectQuery(`SELECT 1 FROM pets WHERE id=\$1 AND owner_id=\$2`).
		WithArgs("pet-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if err := st.VerifyPetOwnership(context.Background(), "pet-1", "user-1"); err != nil {
		t.Fatalf("expected ownership to verify, got %v", err)
	}
}

func TestVerifyPetOwnershipNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	mock.ExpectQuery(`SELECT 1 FROM pets WHERE id=\$1 AND owner_id=\$2`).
		WithArgs("pet-1", "stranger").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	if err := st.VerifyPetOwnership(context.Background(), "pet-1", "stranger"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectExec(`UPDATE pets SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = st.UpdatePet(context.Background(), Pet{ID: "pet-404", OwnerID: "user-1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
