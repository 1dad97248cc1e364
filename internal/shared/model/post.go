package model

import "time"

// PostStatus 文章状态
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// ValidPostStatus 校验状态取值
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post 文章
//
// 派生字段约束：
//   - Slug 由标题派生，全局唯一；标题变更时重新派生
//   - WordCount / ReadingTime 由正文派生；正文变更时重新派生
//   - PublishedAt 在状态首次变为 published 时盖章，此后不再改写
type Post struct {
	ID              string     `json:"id" bson:"_id"`
	Title           string     `json:"title" bson:"title"`
	Slug            string     `json:"slug" bson:"slug"`
	Content         string     `json:"content" bson:"content"`
	Excerpt         string     `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty" bson:"meta_description,omitempty"`
	Status          PostStatus `json:"status" bson:"status"`
	FeaturedImage   string     `json:"featured_image,omitempty" bson:"featured_image,omitempty"`
	AuthorID        string     `json:"author_id" bson:"author_id"`
	WordCount       int        `json:"word_count" bson:"word_count"`
	ReadingTime     int        `json:"reading_time" bson:"reading_time"`
	Views           int64      `json:"views" bson:"views"`
	PublishedAt     *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`
	Categories      []string   `json:"categories" bson:"categories"`
	Tags            []string   `json:"tags" bson:"tags"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}
