package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

func newTestStore(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Path:    filepath.Join(t.TempDir(), "academx.db"),
		Timeout: 10 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	m.retryDelay = 10 * time.Millisecond

	t.Cleanup(func() { _ = m.Close() })
	return m
}

func testUser(username string) *types.User {
	return &types.User{
		Username:     username,
		PasswordHash: "$2a$12$fakehash",
		CreatedAt:    time.Now().UTC(),
	}
}

func testDocument(filename, author string) *types.Document {
	return &types.Document{
		Filename:    filename,
		Title:       "Linear Algebra Notes",
		Description: "Week 1-4 lecture notes",
		Author:      author,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestUsers_CreateGetUnique(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, testUser("ayse")))

	user, err := m.GetUser(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, "ayse", user.Username)
	assert.Empty(t, user.Badges)
	assert.Empty(t, user.Favorites)

	assert.ErrorIs(t, m.CreateUser(ctx, testUser("ayse")), ErrUsernameTaken)

	_, err = m.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsers_UpdatePassword(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, testUser("ayse")))
	require.NoError(t, m.UpdatePassword(ctx, "ayse", "newhash"))

	user, err := m.GetUser(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, "newhash", user.PasswordHash)

	assert.ErrorIs(t, m.UpdatePassword(ctx, "nobody", "h"), ErrUserNotFound)
}

func TestUsers_RenameRewritesAuthorship(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, testUser("ayse")))
	require.NoError(t, m.CreateUser(ctx, testUser("mehmet")))
	require.NoError(t, m.CreateDocument(ctx, testDocument("1-notes.pdf", "ayse")))

	assert.ErrorIs(t, m.RenameUser(ctx, "ayse", "mehmet"), ErrUsernameTaken)

	require.NoError(t, m.RenameUser(ctx, "ayse", "aysenur"))

	_, err := m.GetUser(ctx, "ayse")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = m.GetUser(ctx, "aysenur")
	require.NoError(t, err)

	docs, err := m.ListDocumentsByAuthor(ctx, "aysenur")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUsers_BadgesAndFavorites(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, testUser("ayse")))

	require.NoError(t, m.AddBadge(ctx, "ayse", "first-upload"))
	require.NoError(t, m.AddBadge(ctx, "ayse", "first-upload")) // idempotent
	require.NoError(t, m.AddBadge(ctx, "ayse", "helper"))

	fav, err := m.ToggleFavorite(ctx, "ayse", "1-notes.pdf")
	require.NoError(t, err)
	assert.True(t, fav)

	user, err := m.GetUser(ctx, "ayse")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-upload", "helper"}, user.Badges)
	assert.Equal(t, []string{"1-notes.pdf"}, user.Favorites)

	fav, err = m.ToggleFavorite(ctx, "ayse", "1-notes.pdf")
	require.NoError(t, err)
	assert.False(t, fav)

	user, err = m.GetUser(ctx, "ayse")
	require.NoError(t, err)
	assert.Empty(t, user.Favorites)
}

func TestDocuments_Lifecycle(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("1-notes.pdf", "ayse")
	require.NoError(t, m.CreateDocument(ctx, doc))

	got, err := m.GetDocument(ctx, "1-notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, 0, got.Likes)

	likes, err := m.IncrementLikes(ctx, "1-notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, err = m.IncrementLikes(ctx, "1-notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	_, err = m.IncrementLikes(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, m.DeleteDocument(ctx, "1-notes.pdf"))
	_, err = m.GetDocument(ctx, "1-notes.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, m.DeleteDocument(ctx, "1-notes.pdf"), ErrDocumentNotFound)
}

func TestDocuments_CommentsKeepCounterInStep(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, m.CreateDocument(ctx, testDocument("1-notes.pdf", "ayse")))

	c1 := &types.Comment{Filename: "1-notes.pdf", Username: "mehmet", Body: "very helpful", CreatedAt: time.Now().UTC()}
	c2 := &types.Comment{Filename: "1-notes.pdf", Username: "ayse", Body: "thanks!", CreatedAt: time.Now().UTC().Add(time.Second)}
	require.NoError(t, m.AddComment(ctx, c1))
	require.NoError(t, m.AddComment(ctx, c2))
	assert.NotZero(t, c1.ID)
	assert.NotEqual(t, c1.ID, c2.ID)

	doc, err := m.GetDocument(ctx, "1-notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Comments)

	comments, err := m.ListComments(ctx, "1-notes.pdf")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "very helpful", comments[0].Body)

	err = m.AddComment(ctx, &types.Comment{Filename: "missing.pdf", Username: "x", Body: "y", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListings_SearchAndPagination(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 8; i++ {
		subject := "calculus"
		if i%2 == 1 {
			subject = "physics"
		}
		require.NoError(t, m.CreateListing(ctx, &types.Listing{
			ID:          fmt.Sprintf("listing-%d", i),
			LessonTitle: fmt.Sprintf("%s tutoring %d", subject, i),
			Description: "one on one",
			Price:       250,
			Contact:     "ayse@example.edu",
			Author:      "ayse",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, total, err := m.SearchListings(ctx, "", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	require.Len(t, all, 6)
	// Newest first.
	assert.Equal(t, "listing-7", all[0].ID)

	page2, total, err := m.SearchListings(ctx, "", 2, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Len(t, page2, 2)

	calc, total, err := m.SearchListings(ctx, "calculus", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, calc, 4)

	none, total, err := m.SearchListings(ctx, "violin", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, none)
}

func TestForum_QuestionsAndAnswers(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	q := &types.Question{
		ID:        "q1",
		Title:     "Integration by parts",
		Body:      "How do I choose u and dv?",
		Category:  "Mathematics",
		Author:    "mehmet",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, m.CreateQuestion(ctx, q))

	a := &types.Answer{QuestionID: "q1", Body: "LIATE is a decent rule of thumb.", Author: "ayse", CreatedAt: time.Now().UTC()}
	require.NoError(t, m.AddAnswer(ctx, a))
	assert.NotZero(t, a.ID)

	got, err := m.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "ayse", got.Answers[0].Author)

	list, err := m.ListQuestions(ctx, "Mathematics")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = m.ListQuestions(ctx, "Physics")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = m.AddAnswer(ctx, &types.Answer{QuestionID: "missing", Body: "x", Author: "y", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = m.GetQuestion(ctx, "missing")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestManager_CloseRejectsWrites(t *testing.T) {
	m := newTestStore(t)

	require.NoError(t, m.Close())
	err := m.CreateUser(context.Background(), testUser("late"))
	assert.ErrorIs(t, err, ErrClosed)
	// Double close is a no-op.
	require.NoError(t, m.Close())
}

func TestManager_HealthCheck(t *testing.T) {
	m := newTestStore(t)
	assert.NoError(t, m.HealthCheck(context.Background()))
}
