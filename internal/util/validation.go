package util

import (
	"regexp"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// Player IDs are client-chosen, so the server constrains them to a safe
// shape: 1-64 chars of letters, digits, underscore, dot or dash.
var playerIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

func IsValidPlayerID(s string) bool {
	return playerIDRegex.MatchString(s)
}
