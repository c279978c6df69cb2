package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 0, ReadTime(""))
	assert.Equal(t, 1, ReadTime("one"))
	assert.Equal(t, 1, ReadTime(words(200)))
	assert.Equal(t, 2, ReadTime(words(201)))
	assert.Equal(t, 2, ReadTime(words(400)))
	assert.Equal(t, 3, ReadTime(words(500)))
}

func TestSlugBase(t *testing.T) {
	assert.Equal(t, "hello-world", SlugBase("Hello World"))
	assert.Equal(t, "go-1-21-is-out", SlugBase("Go 1.21 is out!"))
}

func TestExcerptShortContentPassesThrough(t *testing.T) {
	assert.Equal(t, "a short post", Excerpt("a short post", ExcerptMaxLen))
}

func TestExcerptStripsNewlines(t *testing.T) {
	got := Excerpt("line one\nline two\r\n\tline three", ExcerptMaxLen)
	assert.Equal(t, "line one line two line three", got)
}

func TestExcerptTruncatesWithEllipsis(t *testing.T) {
	got := Excerpt(words(200), ExcerptMaxLen)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), ExcerptMaxLen+1)
}

func TestListItemOmitsContent(t *testing.T) {
	b := Blog{Title: "t", Content: words(300)}
	item := b.ListItem()
	assert.NotContains(t, item.Excerpt, "\n")
	assert.LessOrEqual(t, len([]rune(item.Excerpt)), ExcerptMaxLen+1)
}
