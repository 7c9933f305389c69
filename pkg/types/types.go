package types

import (
	"time"
)

// Socket event kinds accepted from and echoed to clients. The public and
// private variants share mechanics; the split mirrors how the client
// treats topic rooms and 1:1 rooms as separate features.
const (
	EventJoinRoom        = "joinRoom"
	EventChatMessage     = "chatMessage"
	EventJoinPrivateRoom = "joinPrivateRoom"
	EventPrivateMessage  = "privateMessage"
	EventLeaveRoom       = "leaveRoom"
)

// ChatEvent is one inbound or outbound room message. Body is echoed to
// recipients verbatim; the server never reshapes it. Events are transient
// and never persisted.
type ChatEvent struct {
	Kind string         `json:"event"`
	Room string         `json:"room"`
	Body map[string]any `json:"data,omitempty"`
}

// User is a registered account. Favorites holds document filenames,
// Badges holds display labels earned on the platform.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Badges       []string  `json:"badges"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"created_at"`
}

// Document is the metadata record for one uploaded PDF. Likes and
// Comments are denormalized counters kept in step by the store.
type Document struct {
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
}

// Comment is one reader comment on a document.
type Comment struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Listing is a tutoring/lesson advertisement.
type Listing struct {
	ID          string    `json:"id"`
	LessonTitle string    `json:"lesson_title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Contact     string    `json:"contact"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question is a forum question; Answers are attached on detail reads.
type Question struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Answers   []*Answer `json:"answers,omitempty"`
}

// Answer is one reply to a forum question.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID string    `json:"question_id"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
}
