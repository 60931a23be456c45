package store

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestListPetDocumentURLs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	rows := sqlmock.NewRows([]string{"url"}).
		AddRow("https://files.example.com/newer.pdf").
		AddRow("https://files.example.com/older.pdf")
	mock.ExpectQuery(`SELECT url FROM pet_documents WHERE pet_id=\$1 AND file_type=\$2 ORDER BY uploaded_at DESC`).
		WithArgs("pet-1", FileTypeDocument).
		WillReturnRows(rows)

	urls, err := st.ListPetDocumentURLs(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("ListPetDocumentURLs returned error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://files.example.com/newer.pdf" {
		t.Fatalf("unexpected urls: %v", urls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListPetDocumentURLsPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT url FROM pet_documents`).WillReturnError(boom)

	if _, err := st.ListPetDocumentURLs(context.Background(), "pet-1"); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate unchanged, got %v", err)
	}
}

func TestDeletePetDocumentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectExec(`DELETE FROM pet_documents WHERE id=\$1 AND pet_id=\$2`).
		WithArgs("doc-404", "pet-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.DeletePetDocument(context.Background(), "doc-404", "pet-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
