// Package format renders values for Telegram messages.
package format

import (
	"html"
	"strings"
)

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}

// Handle renders a Telegram username as an escaped @mention, or "N/A".
func Handle(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" || username == "N/A" {
		return "N/A"
	}
	return "@" + html.EscapeString(username)
}
