package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// CreateDocument records the metadata for an uploaded PDF.
func (m *Manager) CreateDocument(ctx context.Context, doc *types.Document) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO documents (filename, title, description, author, created_at, likes, comments)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.Filename, doc.Title, doc.Description, doc.Author, doc.CreatedAt, doc.Likes, doc.Comments,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		return nil
	})
}

// ListDocuments returns all documents, newest first.
func (m *Manager) ListDocuments(ctx context.Context) ([]*types.Document, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT filename, title, description, author, created_at, likes, comments
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListDocumentsByAuthor returns the documents a user uploaded, newest
// first.
func (m *Manager) ListDocumentsByAuthor(ctx context.Context, author string) ([]*types.Document, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT filename, title, description, author, created_at, likes, comments
		FROM documents WHERE author = ? ORDER BY created_at DESC`, author)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetDocument loads one document's metadata.
func (m *Manager) GetDocument(ctx context.Context, filename string) (*types.Document, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT filename, title, description, author, created_at, likes, comments
		FROM documents WHERE filename = ?`, filename)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes the metadata record; comments cascade.
func (m *Manager) DeleteDocument(ctx context.Context, filename string) error {
	return m.executeWrite(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE filename = ?`, filename)
		if err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return requireRow(res, ErrDocumentNotFound)
	})
}

// IncrementLikes bumps the like counter and returns the new value.
func (m *Manager) IncrementLikes(ctx context.Context, filename string) (int, error) {
	var likes int
	err := m.executeWrite(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `UPDATE documents SET likes = likes + 1 WHERE filename = ?`, filename)
		if err != nil {
			return fmt.Errorf("failed to increment likes: %w", err)
		}
		if err := requireRow(res, ErrDocumentNotFound); err != nil {
			return err
		}
		return db.QueryRowContext(ctx, `SELECT likes FROM documents WHERE filename = ?`, filename).Scan(&likes)
	})
	return likes, err
}

// AddComment inserts a comment and bumps the document's counter in one
// transaction, so the denormalized count cannot drift. The generated id
// is written back into the comment.
func (m *Manager) AddComment(ctx context.Context, comment *types.Comment) error {
	return m.executeWrite(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, `UPDATE documents SET comments = comments + 1 WHERE filename = ?`, comment.Filename)
		if err != nil {
			return fmt.Errorf("failed to bump comment count: %w", err)
		}
		if err := requireRow(res, ErrDocumentNotFound); err != nil {
			return err
		}

		ins, err := tx.ExecContext(ctx, `
			INSERT INTO comments (filename, username, body, created_at)
			VALUES (?, ?, ?, ?)`,
			comment.Filename, comment.Username, comment.Body, comment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		comment.ID, err = ins.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read comment id: %w", err)
		}

		return tx.Commit()
	})
}

// ListComments returns a document's comments, oldest first.
func (m *Manager) ListComments(ctx context.Context, filename string) ([]*types.Comment, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, filename, username, body, created_at
		FROM comments WHERE filename = ? ORDER BY created_at, id`, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.Filename, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

type docScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row docScanner) (*types.Document, error) {
	var doc types.Document
	err := row.Scan(&doc.Filename, &doc.Title, &doc.Description, &doc.Author, &doc.CreatedAt, &doc.Likes, &doc.Comments)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDocuments(rows *sql.Rows) ([]*types.Document, error) {
	var docs []*types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
