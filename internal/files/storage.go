// Package files stores uploaded content on the local filesystem: PDF
// documents under one directory, avatars under another. Names are
// sanitized and timestamp-prefixed so concurrent uploads of the same
// source file never collide.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrTooLarge     = errors.New("file exceeds size limit")
	ErrEmptyFile    = errors.New("file is empty")
	ErrUnsafeName   = errors.New("unsafe file name")
	ErrNotPDF       = errors.New("only PDF files are accepted")
	ErrInvalidImage = errors.New("avatar must be an image")
)

// pdfMagic is the required %PDF header; content sniffing beats trusting
// the client's content type.
var pdfMagic = []byte("%PDF")

// Storage owns the upload directories.
type Storage struct {
	documentsDir string
	avatarsDir   string
	maxSize      int64
	now          func() time.Time
}

// NewStorage creates the directories if needed.
func NewStorage(documentsDir, avatarsDir string, maxSize int64) (*Storage, error) {
	for _, dir := range []string{documentsDir, avatarsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Storage{
		documentsDir: documentsDir,
		avatarsDir:   avatarsDir,
		maxSize:      maxSize,
		now:          time.Now,
	}, nil
}

// SaveDocument writes an uploaded PDF and returns the stored filename:
// a millisecond timestamp prefix plus the sanitized original name.
func (s *Storage) SaveDocument(originalName string, r io.Reader) (string, error) {
	name := sanitizeName(originalName)
	if name == "" {
		return "", ErrUnsafeName
	}

	data, err := s.readBounded(r)
	if err != nil {
		return "", err
	}
	if len(data) < len(pdfMagic) || string(data[:len(pdfMagic)]) != string(pdfMagic) {
		return "", ErrNotPDF
	}

	filename := fmt.Sprintf("%d-%s", s.now().UnixMilli(), name)
	if err := os.WriteFile(filepath.Join(s.documentsDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return filename, nil
}

// OpenDocument opens a stored PDF for serving.
func (s *Storage) OpenDocument(filename string) (*os.File, error) {
	path, err := s.documentPath(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// DeleteDocument removes a stored PDF. Missing files are a no-op so the
// metadata record can always be cleaned up.
func (s *Storage) DeleteDocument(filename string) error {
	path, err := s.documentPath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// SaveAvatar writes a user's avatar, replacing any previous one. Only
// JPEG and PNG content is accepted.
func (s *Storage) SaveAvatar(username string, r io.Reader) error {
	data, err := s.readBounded(r)
	if err != nil {
		return err
	}
	if !isImage(data) {
		return ErrInvalidImage
	}
	path := filepath.Join(s.avatarsDir, username+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write avatar: %w", err)
	}
	return nil
}

// OpenAvatar opens a user's avatar if one was uploaded.
func (s *Storage) OpenAvatar(username string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.avatarsDir, username+".jpg"))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// RenameAvatar moves an avatar to a new username. Missing avatars are a
// no-op so username changes never fail on file state.
func (s *Storage) RenameAvatar(oldName, newName string) error {
	oldPath := filepath.Join(s.avatarsDir, oldName+".jpg")
	newPath := filepath.Join(s.avatarsDir, newName+".jpg")
	err := os.Rename(oldPath, newPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// HasAvatar reports whether the user uploaded an avatar.
func (s *Storage) HasAvatar(username string) bool {
	_, err := os.Stat(filepath.Join(s.avatarsDir, username+".jpg"))
	return err == nil
}

func (s *Storage) documentPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrUnsafeName
	}
	return filepath.Join(s.documentsDir, filename), nil
}

func (s *Storage) readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// sanitizeName strips path components and anything outside a
// conservative character set.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" || out == "_" {
		return ""
	}
	return out
}

func isImage(data []byte) bool {
	if len(data) > 2 && data[0] == 0xff && data[1] == 0xd8 {
		return true // JPEG
	}
	if len(data) > 8 && string(data[1:4]) == "PNG" && data[0] == 0x89 {
		return true // PNG
	}
	return false
}
