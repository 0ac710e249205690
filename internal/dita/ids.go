package dita

import (
	"regexp"
	"strings"
)

// DefaultID is used when sanitizing leaves nothing.
const DefaultID = "topic"

var (
	invalidIDRe     = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	underscoreRunRe = regexp.MustCompile(`_+`)
)

// SanitizeID turns free text into an XML identifier: lower case, anything
// outside letters, digits, underscore and hyphen becomes an underscore,
// underscore runs collapse and leading or trailing underscores are trimmed.
func SanitizeID(text string) string {
	id := invalidIDRe.ReplaceAllString(strings.ToLower(text), "_")
	if id != "" && !isLetter(id[0]) && id[0] != '_' {
		id = "_" + id
	}
	id = underscoreRunRe.ReplaceAllString(id, "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return DefaultID
	}
	return id
}

// DocumentID derives a topic id from a slash-separated source path.
func DocumentID(path string) string {
	return SanitizeID(strings.ReplaceAll(strings.TrimSuffix(path, ".md"), "/", "_"))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
