package mongostore

import (
	"context"

	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	return insertOne(ctx, s.col(ColPosts), post)
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return findOne[model.Post](ctx, s.col(ColPosts), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return findOne[model.Post](ctx, s.col(ColPosts), bson.D{{Key: "slug", Value: slug}})
}

// UpdatePost 整体替换文章的可变字段
//
// 派生字段已由调用方经 ApplyDerivations 计算完毕；slug 唯一索引
// 冲突在这里转换为 storage.ErrDuplicate。
func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	return updateFields(ctx, s.col(ColPosts), post.ID, bson.D{
		{Key: "title", Value: post.Title},
		{Key: "slug", Value: post.Slug},
		{Key: "content", Value: post.Content},
		{Key: "excerpt", Value: post.Excerpt},
		{Key: "meta_description", Value: post.MetaDescription},
		{Key: "status", Value: post.Status},
		{Key: "featured_image", Value: post.FeaturedImage},
		{Key: "word_count", Value: post.WordCount},
		{Key: "reading_time", Value: post.ReadingTime},
		{Key: "published_at", Value: post.PublishedAt},
		{Key: "categories", Value: post.Categories},
		{Key: "tags", Value: post.Tags},
		{Key: "updated_at", Value: post.UpdatedAt},
	})
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColPosts), id)
}

// IncrementPostViews 原子自增阅读计数
func (s *Store) IncrementPostViews(ctx context.Context, id string) error {
	res, err := s.col(ColPosts).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// postFilter 将查询条件编译为 bson 过滤器
func postFilter(f storage.PostFilter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.AuthorID != "" {
		filter = append(filter, bson.E{Key: "author_id", Value: f.AuthorID})
	}
	if f.CategoryID != "" {
		filter = append(filter, bson.E{Key: "categories", Value: f.CategoryID})
	}
	if f.TagID != "" {
		filter = append(filter, bson.E{Key: "tags", Value: f.TagID})
	}
	if f.Search != "" {
		re := bson.D{{Key: "$regex", Value: f.Search}, {Key: "$options", Value: "i"}}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}
	return filter
}

// postSort 将排序条件编译为 bson 排序
func postSort(f storage.PostFilter) bson.D {
	field := f.SortBy
	switch field {
	case "title", "views", "published_at", "created_at", "updated_at":
	default:
		field = "created_at"
	}
	order := -1
	if f.SortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}}
}

func (s *Store) ListPosts(ctx context.Context, f storage.PostFilter) ([]*model.Post, error) {
	opts := options.Find().SetSort(postSort(f)).SetSkip(f.Skip)
	if f.Limit > 0 {
		opts = opts.SetLimit(f.Limit)
	}
	return findMany[model.Post](ctx, s.col(ColPosts), postFilter(f), opts)
}

func (s *Store) CountPosts(ctx context.Context, f storage.PostFilter) (int64, error) {
	return countDocs(ctx, s.col(ColPosts), postFilter(f))
}
