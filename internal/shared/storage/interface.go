// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（生产）、memstore/（测试）
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"

	"blog-panel/internal/shared/model"
)

// PostFilter 文章列表查询条件
//
// 零值字段不参与过滤。Search 对标题和正文做大小写不敏感的子串匹配。
type PostFilter struct {
	Status     model.PostStatus
	AuthorID   string
	CategoryID string
	TagID      string
	Search     string
	SortBy     string // created_at / published_at / title / views，默认 created_at
	SortOrder  string // asc / desc，默认 desc
	Skip       int64
	Limit      int64
}

// MediaFilter 媒体列表查询条件
type MediaFilter struct {
	UploadedByID string // 非空时仅返回该用户上传的媒体
	MimePrefix   string // 如 "image"，匹配 mimetype 前缀
	Skip         int64
	Limit        int64
}

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// PostStore 文章存储接口
//
// UpdatePost 整体替换可变字段；IncrementPostViews 为原子自增。
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, f PostFilter) ([]*model.Post, error)
	CountPosts(ctx context.Context, f PostFilter) (int64, error)
	IncrementPostViews(ctx context.Context, id string) error
}

// CategoryStore 分类存储接口
//
// FindOrCreateCategoryByName 必须是原子的按名查找或创建
// （并发竞争由唯一索引仲裁，失败方收到 ErrDuplicate）。
type CategoryStore interface {
	CreateCategory(ctx context.Context, cat *model.Category) error
	InsertCategories(ctx context.Context, cats []*model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	FindOrCreateCategoryByName(ctx context.Context, name string) (*model.Category, error)
	UpdateCategory(ctx context.Context, cat *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CountCategories(ctx context.Context) (int64, error)
	CountPostsWithCategory(ctx context.Context, id string) (int64, error)
}

// TagStore 标签存储接口
type TagStore interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	InsertTags(ctx context.Context, tags []*model.Tag) error
	GetTag(ctx context.Context, id string) (*model.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error)
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
	FindOrCreateTagByName(ctx context.Context, name string) (*model.Tag, error)
	UpdateTag(ctx context.Context, tag *model.Tag) error
	DeleteTag(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]*model.Tag, error)
	CountTags(ctx context.Context) (int64, error)
	CountPostsWithTag(ctx context.Context, id string) (int64, error)
}

// MediaStore 媒体元数据存储接口
type MediaStore interface {
	CreateMedia(ctx context.Context, media *model.Media) error
	GetMedia(ctx context.Context, id string) (*model.Media, error)
	DeleteMedia(ctx context.Context, id string) error
	ListMedia(ctx context.Context, f MediaFilter) ([]*model.Media, error)
	CountMedia(ctx context.Context, f MediaFilter) (int64, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	PostStore
	CategoryStore
	TagStore
	MediaStore
	Close() error
}
