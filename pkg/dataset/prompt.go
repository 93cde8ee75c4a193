package dataset

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// HumaniseTitle converts a filename stem into a readable label.
func HumaniseTitle(stem string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// BuildPrompt crafts the prompt text for a snippet.
func BuildPrompt(category, title, sourcePath string) string {
	return strings.Join([]string{
		"You are maintaining a knowledge base of AutoHotkey examples.",
		"Category: " + category,
		"Example ID: " + title,
		"Source Path: " + sourcePath,
		"Return the exact AutoHotkey snippet associated with this reference.",
	}, "\n")
}
