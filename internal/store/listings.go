package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// CreateListing inserts a tutoring advertisement.
func (m *Manager) CreateListing(ctx context.Context, listing *types.Listing) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO listings (id, lesson_title, description, price, contact, author, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			listing.ID, listing.LessonTitle, listing.Description, listing.Price,
			listing.Contact, listing.Author, listing.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert listing: %w", err)
		}
		return nil
	})
}

// GetListing loads one listing by id.
func (m *Manager) GetListing(ctx context.Context, id string) (*types.Listing, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, lesson_title, description, price, contact, author, created_at
		FROM listings WHERE id = ?`, id)

	var l types.Listing
	err := row.Scan(&l.ID, &l.LessonTitle, &l.Description, &l.Price, &l.Contact, &l.Author, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return &l, nil
}

// SearchListings returns one page of listings matching the search term
// against title, description and contact, newest first, plus the total
// match count for pagination.
func (m *Manager) SearchListings(ctx context.Context, search string, page, perPage int) ([]*types.Listing, int, error) {
	if page < 1 {
		page = 1
	}
	pattern := "%" + search + "%"

	var total int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM listings
		WHERE lesson_title LIKE ? OR description LIKE ? OR contact LIKE ?`,
		pattern, pattern, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, lesson_title, description, price, contact, author, created_at
		FROM listings
		WHERE lesson_title LIKE ? OR description LIKE ? OR contact LIKE ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		pattern, pattern, pattern, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	var listings []*types.Listing
	for rows.Next() {
		var l types.Listing
		if err := rows.Scan(&l.ID, &l.LessonTitle, &l.Description, &l.Price, &l.Contact, &l.Author, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, &l)
	}
	return listings, total, rows.Err()
}
