package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// CreateUser inserts a new account. Usernames are unique.
func (m *Manager) CreateUser(ctx context.Context, user *types.User) error {
	return m.executeWrite(func(db *sql.DB) error {
		badges, favorites, err := marshalUserLists(user)
		if err != nil {
			return err
		}

		var exists int
		err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, user.Username).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists > 0 {
			return ErrUsernameTaken
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, badges, favorites, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			user.Username, user.PasswordHash, badges, favorites, user.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUser loads one account by username.
func (m *Manager) GetUser(ctx context.Context, username string) (*types.User, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT username, password_hash, badges, favorites, created_at
		FROM users WHERE username = ?`, username)

	var user types.User
	var badges, favorites string
	err := row.Scan(&user.Username, &user.PasswordHash, &badges, &favorites, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := json.Unmarshal([]byte(badges), &user.Badges); err != nil {
		return nil, fmt.Errorf("corrupt badges for %s: %w", username, err)
	}
	if err := json.Unmarshal([]byte(favorites), &user.Favorites); err != nil {
		return nil, fmt.Errorf("corrupt favorites for %s: %w", username, err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored hash.
func (m *Manager) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return m.executeWrite(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE username = ?`, passwordHash, username)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return requireRow(res, ErrUserNotFound)
	})
}

// RenameUser changes a username and rewrites authorship across the
// content tables in one transaction, matching what the profile page
// promises.
func (m *Manager) RenameUser(ctx context.Context, oldName, newName string) error {
	return m.executeWrite(func(db *sql.DB) error {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, newName).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists > 0 {
			return ErrUsernameTaken
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, `UPDATE users SET username = ? WHERE username = ?`, newName, oldName)
		if err != nil {
			return fmt.Errorf("failed to rename user: %w", err)
		}
		if err := requireRow(res, ErrUserNotFound); err != nil {
			return err
		}

		for _, stmt := range []string{
			`UPDATE documents SET author = ? WHERE author = ?`,
			`UPDATE comments SET username = ? WHERE username = ?`,
			`UPDATE listings SET author = ? WHERE author = ?`,
			`UPDATE questions SET author = ? WHERE author = ?`,
			`UPDATE answers SET author = ? WHERE author = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, newName, oldName); err != nil {
				return fmt.Errorf("failed to rewrite authorship: %w", err)
			}
		}

		return tx.Commit()
	})
}

// AddBadge appends a badge label if the user does not already carry it.
func (m *Manager) AddBadge(ctx context.Context, username, badge string) error {
	return m.executeWrite(func(db *sql.DB) error {
		badges, err := readUserList(ctx, db, username, "badges")
		if err != nil {
			return err
		}
		for _, b := range badges {
			if b == badge {
				return nil
			}
		}
		return writeUserList(ctx, db, username, "badges", append(badges, badge))
	})
}

// ToggleFavorite flips a document in the user's favorites set and
// reports whether it is a favorite afterwards.
func (m *Manager) ToggleFavorite(ctx context.Context, username, filename string) (bool, error) {
	var nowFavorite bool
	err := m.executeWrite(func(db *sql.DB) error {
		favorites, err := readUserList(ctx, db, username, "favorites")
		if err != nil {
			return err
		}

		kept := favorites[:0]
		removed := false
		for _, f := range favorites {
			if f == filename {
				removed = true
				continue
			}
			kept = append(kept, f)
		}
		if !removed {
			kept = append(kept, filename)
		}
		nowFavorite = !removed

		return writeUserList(ctx, db, username, "favorites", kept)
	})
	return nowFavorite, err
}

func marshalUserLists(user *types.User) (string, string, error) {
	badges := user.Badges
	if badges == nil {
		badges = []string{}
	}
	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	b, err := json.Marshal(badges)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal badges: %w", err)
	}
	f, err := json.Marshal(favorites)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal favorites: %w", err)
	}
	return string(b), string(f), nil
}

func readUserList(ctx context.Context, db *sql.DB, username, column string) ([]string, error) {
	var raw string
	// column is one of two compile-time constants, never user input.
	err := db.QueryRowContext(ctx, `SELECT `+column+` FROM users WHERE username = ?`, username).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", column, err)
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("corrupt %s for %s: %w", column, username, err)
	}
	return list, nil
}

func writeUserList(ctx context.Context, db *sql.DB, username, column string, list []string) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", column, err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE users SET `+column+` = ? WHERE username = ?`, string(raw), username); err != nil {
		return fmt.Errorf("failed to write %s: %w", column, err)
	}
	return nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
