package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"simple", "alice", true},
		{"with digits", "user123", true},
		{"underscore and hyphen", "a_b-c", true},
		{"single char", "x", true},
		{"max length", strings.Repeat("a", 50), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 51), false},
		{"space", "a b", false},
		{"punctuation", "a!b", false},
		{"unicode", "kullanıcı", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidUsername(tc.username))
		})
	}
}

func TestIsValidRoomID(t *testing.T) {
	cases := []struct {
		name  string
		room  string
		valid bool
	}{
		{"topic room", "math-101", true},
		{"spaces allowed", "study group 3", true},
		{"unicode allowed", "fizik-dersi-ödev", true},
		{"max length", strings.Repeat("r", 100), true},
		{"empty", "", false},
		{"too long", strings.Repeat("r", 101), false},
		{"newline", "room\n1", false},
		{"null byte", "room\x001", false},
		{"delete char", "room\x7f", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidRoomID(tc.room))
		})
	}
}

func TestPrivateRoomIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PrivateRoomID("alice", "bob"), PrivateRoomID("bob", "alice"))
	assert.Equal(t, "private-alice-bob", PrivateRoomID("bob", "alice"))
	assert.NotEqual(t, PrivateRoomID("alice", "bob"), PrivateRoomID("alice", "carol"))
}
