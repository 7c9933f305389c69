package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// ForumCategories is the fixed category list questions are filed under.
var ForumCategories = []string{"Mathematics", "Physics", "Programming", "General"}

// CreateQuestion inserts a forum question.
func (m *Manager) CreateQuestion(ctx context.Context, q *types.Question) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO questions (id, title, body, category, author, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			q.ID, q.Title, q.Body, q.Category, q.Author, q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
		return nil
	})
}

// ListQuestions returns questions newest first, optionally filtered by
// category.
func (m *Manager) ListQuestions(ctx context.Context, category string) ([]*types.Question, error) {
	query := `SELECT id, title, body, category, author, created_at FROM questions`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*types.Question
	for rows.Next() {
		var q types.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Body, &q.Category, &q.Author, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// GetQuestion loads one question with its answers, answers oldest first.
func (m *Manager) GetQuestion(ctx context.Context, id string) (*types.Question, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, title, body, category, author, created_at
		FROM questions WHERE id = ?`, id)

	var q types.Question
	err := row.Scan(&q.ID, &q.Title, &q.Body, &q.Category, &q.Author, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, question_id, body, author, created_at
		FROM answers WHERE question_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a types.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Body, &a.Author, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		q.Answers = append(q.Answers, &a)
	}
	return &q, rows.Err()
}

// AddAnswer inserts an answer to an existing question and writes the
// generated id back.
func (m *Manager) AddAnswer(ctx context.Context, answer *types.Answer) error {
	return m.executeWrite(func(db *sql.DB) error {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE id = ?`, answer.QuestionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check question: %w", err)
		}
		if exists == 0 {
			return ErrQuestionNotFound
		}

		res, err := db.ExecContext(ctx, `
			INSERT INTO answers (question_id, body, author, created_at)
			VALUES (?, ?, ?, ?)`,
			answer.QuestionID, answer.Body, answer.Author, answer.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
		answer.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read answer id: %w", err)
		}
		return nil
	})
}
