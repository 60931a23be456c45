package store

import (
	"context"
	"time"
)

// FileTypeDocument marks attachments that feed the chat retrieval index.
const FileTypeDocument = "document"

type PetDocument struct {
	ID         string
	PetID      string
	URL        string
	FileName   string
	FileType   string
	UploadedAt time.Time
}

func (s *Store) AddPetDocument(ctx context.Context, d PetDocument) (string, error) {
	if d.FileType == "" {
		d.FileType = FileTypeDocument
	}
	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO pet_documents (pet_id, url, file_name, file_type) VALUES ($1,$2,$3,$4) RETURNING id`,
		d.PetID, d.URL, d.FileName, d.FileType).Scan(&id)
	return id, err
}

func (s *Store) ListPetDocuments(ctx context.Context, petID string) ([]PetDocument, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, url, file_name, file_type, uploaded_at FROM pet_documents WHERE pet_id=$1 ORDER BY uploaded_at DESC`,
		petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PetDocument
	for rows.Next() {
		var d PetDocument
		if err := rows.Scan(&d.ID, &d.PetID, &d.URL, &d.FileName, &d.FileType, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPetDocumentURLs returns document-type attachment URLs, newest first.
// Store-level errors propagate unchanged.
func (s *Store) ListPetDocumentURLs(ctx context.Context, petID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT url FROM pet_documents WHERE pet_id=$1 AND file_type=$2 ORDER BY uploaded_at DESC`,
		petID, FileTypeDocument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) DeletePetDocument(ctx context.Context, docID, petID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM pet_documents WHERE id=$1 AND pet_id=$2`, docID, petID)
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
