package files

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStorage(dir+"/uploads", dir+"/avatars", 1<<20)
	require.NoError(t, err)
	return s
}

func pdfBody(content string) io.Reader {
	return strings.NewReader("%PDF-1.4\n" + content)
}

func TestSaveDocument_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	filename, err := s.SaveDocument("Week 1 Notes.pdf", pdfBody("lecture"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-Week_1_Notes.pdf", filename)

	f, err := s.OpenDocument(filename)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lecture")
}

func TestSaveDocument_Rejections(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SaveDocument("notes.pdf", strings.NewReader("<html>not a pdf</html>"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = s.SaveDocument("notes.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.SaveDocument("../../etc/passwd", pdfBody("x"))
	require.NoError(t, err) // base name survives sanitization
	_, err = s.SaveDocument("...", pdfBody("x"))
	assert.ErrorIs(t, err, ErrUnsafeName)

	small, err := NewStorage(t.TempDir(), t.TempDir(), 4)
	require.NoError(t, err)
	_, err = small.SaveDocument("notes.pdf", pdfBody("far too large"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOpenDocument_Unsafe(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.OpenDocument("../secrets.pdf")
	assert.ErrorIs(t, err, ErrUnsafeName)
	_, err = s.OpenDocument("missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDocument_Idempotent(t *testing.T) {
	s := newTestStorage(t)

	filename, err := s.SaveDocument("notes.pdf", pdfBody("x"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteDocument(filename))
	require.NoError(t, s.DeleteDocument(filename))
	_, err = s.OpenDocument(filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvatars(t *testing.T) {
	s := newTestStorage(t)

	jpeg := append([]byte{0xff, 0xd8, 0xff}, bytes.Repeat([]byte{0}, 16)...)
	require.NoError(t, s.SaveAvatar("ayse", bytes.NewReader(jpeg)))
	assert.True(t, s.HasAvatar("ayse"))
	assert.False(t, s.HasAvatar("mehmet"))

	f, err := s.OpenAvatar("ayse")
	require.NoError(t, err)
	f.Close()

	err = s.SaveAvatar("ayse", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = s.OpenAvatar("mehmet")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameAvatar(t *testing.T) {
	s := newTestStorage(t)

	jpeg := append([]byte{0xff, 0xd8, 0xff}, bytes.Repeat([]byte{0}, 16)...)
	require.NoError(t, s.SaveAvatar("ayse", bytes.NewReader(jpeg)))

	require.NoError(t, s.RenameAvatar("ayse", "ayse_new"))
	assert.False(t, s.HasAvatar("ayse"))
	assert.True(t, s.HasAvatar("ayse_new"))

	// Renaming a user without an avatar is a no-op.
	require.NoError(t, s.RenameAvatar("mehmet", "m2"))
}
