package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Go  1.22  ", "go-1-22"},
		{"already-slugged", "already-slugged"},
		{"UPPER CASE", "upper-case"},
		{"---", ""},
		{"", ""},
		{"中文标题", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}

	// 同一输入永远产出同一 slug
	assert.Equal(t, Slugify("Some Title"), Slugify("Some Title"))
}

func TestWordCountAndReadingTime(t *testing.T) {
	assert.Equal(t, 3, WordCount("<p>one two three</p>"))
	assert.Equal(t, 2, WordCount("<div class=\"x\">hello</div> world"))
	assert.Equal(t, 0, WordCount("<br/><hr/>"))
	assert.Equal(t, 0, WordCount(""))

	assert.Equal(t, 0, ReadingTime(0))
	assert.Equal(t, 1, ReadingTime(1))
	assert.Equal(t, 1, ReadingTime(200))
	assert.Equal(t, 2, ReadingTime(201))
	assert.Equal(t, 5, ReadingTime(1000))
}

func TestApplyDerivationsOnCreate(t *testing.T) {
	now := time.Now()
	p := &Post{
		Title:   "Hello, World!",
		Content: "<p>one two three</p>",
		Status:  PostStatusDraft,
	}
	p.ApplyDerivations(nil, now)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, 3, p.WordCount)
	assert.Equal(t, 1, p.ReadingTime)
	assert.Nil(t, p.PublishedAt)
}

func TestApplyDerivationsPublishStampedOnce(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	p := &Post{Title: "T", Content: "a b", Status: PostStatusPublished}
	p.ApplyDerivations(nil, t1)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, t1, *p.PublishedAt)

	// 归档后再次发布不改写时间戳
	prev := *p
	p.Status = PostStatusArchived
	p.ApplyDerivations(&prev, t2)

	prev = *p
	p.Status = PostStatusPublished
	p.ApplyDerivations(&prev, t2)
	assert.Equal(t, t1, *p.PublishedAt)
}

func TestApplyDerivationsOnlyChangedSources(t *testing.T) {
	now := time.Now()
	p := &Post{Title: "Old Title", Content: "one two", Status: PostStatusDraft}
	p.ApplyDerivations(nil, now)

	// 仅改正文：slug 不动，字数重算
	prev := *p
	p.Content = "one two three four"
	p.ApplyDerivations(&prev, now)
	assert.Equal(t, "old-title", p.Slug)
	assert.Equal(t, 4, p.WordCount)

	// 仅改标题：slug 重派生，字数不动
	prev = *p
	p.Title = "New Title"
	p.ApplyDerivations(&prev, now)
	assert.Equal(t, "new-title", p.Slug)
	assert.Equal(t, 4, p.WordCount)
}
