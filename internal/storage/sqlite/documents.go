package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/medivise/medivise/internal/core"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) SaveDocument(ctx context.Context, doc core.Document) error {
	query := `INSERT INTO documents (id, filename, full_text) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET filename = excluded.filename, full_text = excluded.full_text`
	if _, err := r.db.ExecContext(ctx, query, doc.ID, doc.Filename, doc.FullText); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (r *DocumentsRepo) GetDocument(ctx context.Context, id string) (core.Document, error) {
	query := `SELECT id, filename, full_text, created_at FROM documents WHERE id = ?`

	var doc core.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.Filename, &doc.FullText, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("%w: document %q not found", core.ErrValidation, id)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

func (r *DocumentsRepo) ListDocuments(ctx context.Context) ([]core.Document, error) {
	query := `SELECT id, filename, created_at FROM documents ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var doc core.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
