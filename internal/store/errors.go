package store

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrDocumentNotFound = errors.New("document not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrClosed           = errors.New("store is closed")
)
