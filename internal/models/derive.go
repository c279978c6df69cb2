package models

import (
	"strings"

	"github.com/gosimple/slug"
)

// Reading speed used for the estimated read time, in words per minute.
const ReadingWordsPerMinute = 200

// ExcerptMaxLen is the excerpt budget in characters, before the ellipsis.
const ExcerptMaxLen = 180

// SlugBase derives the URL-safe slug base from a title. Uniqueness against
// existing posts is resolved by the store.
func SlugBase(title string) string {
	return slug.Make(title)
}

// ReadTime estimates reading time in minutes, rounded up.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + ReadingWordsPerMinute - 1) / ReadingWordsPerMinute
}

// Excerpt collapses the content to a single line of plain text and truncates
// it to max characters with a trailing ellipsis.
func Excerpt(content string, max int) string {
	plain := strings.Join(strings.Fields(content), " ")
	runes := []rune(plain)
	if len(runes) <= max {
		return plain
	}
	return strings.TrimRight(string(runes[:max]), " ") + "…"
}
