package mongostore

import (
	"context"
	"time"

	"blog-panel/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// CategoryStore
// ============================================================================

func (s *Store) CreateCategory(ctx context.Context, cat *model.Category) error {
	return insertOne(ctx, s.col(ColCategories), cat)
}

func (s *Store) InsertCategories(ctx context.Context, cats []*model.Category) error {
	docs := make([]interface{}, len(cats))
	for i, c := range cats {
		docs[i] = c
	}
	return insertMany(ctx, s.col(ColCategories), docs)
}

func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return findOne[model.Category](ctx, s.col(ColCategories), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return findOne[model.Category](ctx, s.col(ColCategories), bson.D{{Key: "slug", Value: slug}})
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return findOne[model.Category](ctx, s.col(ColCategories), bson.D{{Key: "name", Value: name}})
}

// FindOrCreateCategoryByName 按名称原子地查找或创建分类
//
// 使用 FindOneAndUpdate + $setOnInsert + upsert，把读取-创建的竞态
// 交给存储引擎仲裁：并发请求拿到同一个文档；极端情况下输掉唯一索引
// 竞争的一方收到 ErrDuplicate，由调用方决定让整个保存失败。
func (s *Store) FindOrCreateCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	now := time.Now()
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "_id", Value: bson.NewObjectID().Hex()},
		{Key: "name", Value: name},
		{Key: "slug", Value: model.Slugify(name)},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cat model.Category
	err := s.col(ColCategories).
		FindOneAndUpdate(ctx, bson.D{{Key: "name", Value: name}}, update, opts).
		Decode(&cat)
	if err != nil {
		return nil, wrapError(err)
	}
	return &cat, nil
}

func (s *Store) UpdateCategory(ctx context.Context, cat *model.Category) error {
	return updateFields(ctx, s.col(ColCategories), cat.ID, bson.D{
		{Key: "name", Value: cat.Name},
		{Key: "slug", Value: cat.Slug},
		{Key: "description", Value: cat.Description},
		{Key: "updated_at", Value: cat.UpdatedAt},
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColCategories), id)
}

func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[model.Category](ctx, s.col(ColCategories), bson.D{}, opts)
}

func (s *Store) CountCategories(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.col(ColCategories), bson.D{})
}

// CountPostsWithCategory 统计引用该分类的文章数（删除保护用）
func (s *Store) CountPostsWithCategory(ctx context.Context, id string) (int64, error) {
	return countDocs(ctx, s.col(ColPosts), bson.D{{Key: "categories", Value: id}})
}

// ============================================================================
// TagStore
// ============================================================================

func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	return insertOne(ctx, s.col(ColTags), tag)
}

func (s *Store) InsertTags(ctx context.Context, tags []*model.Tag) error {
	docs := make([]interface{}, len(tags))
	for i, t := range tags {
		docs[i] = t
	}
	return insertMany(ctx, s.col(ColTags), docs)
}

func (s *Store) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	return findOne[model.Tag](ctx, s.col(ColTags), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	return findOne[model.Tag](ctx, s.col(ColTags), bson.D{{Key: "slug", Value: slug}})
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	return findOne[model.Tag](ctx, s.col(ColTags), bson.D{{Key: "name", Value: name}})
}

// FindOrCreateTagByName 按名称原子地查找或创建标签，语义同分类版本
func (s *Store) FindOrCreateTagByName(ctx context.Context, name string) (*model.Tag, error) {
	now := time.Now()
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "_id", Value: bson.NewObjectID().Hex()},
		{Key: "name", Value: name},
		{Key: "slug", Value: model.Slugify(name)},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var tag model.Tag
	err := s.col(ColTags).
		FindOneAndUpdate(ctx, bson.D{{Key: "name", Value: name}}, update, opts).
		Decode(&tag)
	if err != nil {
		return nil, wrapError(err)
	}
	return &tag, nil
}

func (s *Store) UpdateTag(ctx context.Context, tag *model.Tag) error {
	return updateFields(ctx, s.col(ColTags), tag.ID, bson.D{
		{Key: "name", Value: tag.Name},
		{Key: "slug", Value: tag.Slug},
		{Key: "updated_at", Value: tag.UpdatedAt},
	})
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColTags), id)
}

func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[model.Tag](ctx, s.col(ColTags), bson.D{}, opts)
}

func (s *Store) CountTags(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.col(ColTags), bson.D{})
}

// CountPostsWithTag 统计引用该标签的文章数（删除保护用）
func (s *Store) CountPostsWithTag(ctx context.Context, id string) (int64, error) {
	return countDocs(ctx, s.col(ColPosts), bson.D{{Key: "tags", Value: id}})
}
