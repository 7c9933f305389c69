package types

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxUsernameLength = 50
	maxRoomIDLength   = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidUsername reports whether a username is 1-50 characters of
// alphanumerics, underscore or hyphen.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > maxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

// IsValidRoomID reports whether a room key is usable. Room keys are
// client-chosen opaque strings; the only hard requirements are that they
// are non-empty, bounded, and contain no control characters.
func IsValidRoomID(room string) bool {
	if room == "" || len(room) > maxRoomIDLength {
		return false
	}
	for _, r := range room {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// PrivateRoomID derives the pairing key for a 1:1 room. Both sides derive
// the same key regardless of argument order.
func PrivateRoomID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return "private-" + strings.Join(pair, "-")
}
