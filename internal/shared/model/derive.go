package model

import (
	"regexp"
	"strings"
	"time"
)

// 文章生命周期派生逻辑
//
// 对应保存前的三项独立派生：slug、字数/阅读时长、发布时间戳。
// 调用方不能绕过：所有写路径都必须经过 ApplyDerivations。

var markupTag = regexp.MustCompile(`<[^>]*>`)

// Slugify 从标题派生 URL 安全的 slug
//
// 规则：小写；非字母数字的连续片段折叠为单个连字符；无首尾连字符。
// 同一输入永远产出同一 slug；跨文章冲突由 posts.slug 唯一索引拦截。
func Slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}

// WordCount 统计正文字数
//
// 先剥除 <...> 标记，再按空白切分并计数非空 token。
func WordCount(content string) int {
	plain := markupTag.ReplaceAllString(content, " ")
	return len(strings.Fields(plain))
}

// ReadingTime 按约 200 词/分钟折算阅读时长（分钟），向上取整
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + 199) / 200
}

// ApplyDerivations 在保存前计算派生字段
//
// prev 为 nil 表示新建，三项派生全部执行；否则仅在对应来源字段
// 发生变化时重新派生。PublishedAt 只在状态首次变为 published 且
// 尚未盖章时写入，此后任何编辑（包括再次 publish）都不会改动它。
func (p *Post) ApplyDerivations(prev *Post, now time.Time) {
	titleChanged := prev == nil || prev.Title != p.Title
	contentChanged := prev == nil || prev.Content != p.Content
	statusChanged := prev == nil || prev.Status != p.Status

	if titleChanged {
		p.Slug = Slugify(p.Title)
	}
	if contentChanged {
		p.WordCount = WordCount(p.Content)
		p.ReadingTime = ReadingTime(p.WordCount)
	}
	if statusChanged && p.Status == PostStatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}
