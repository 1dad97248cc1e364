package mongostore

import (
	"context"

	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// MediaStore
// ============================================================================

func (s *Store) CreateMedia(ctx context.Context, media *model.Media) error {
	return insertOne(ctx, s.col(ColMedia), media)
}

func (s *Store) GetMedia(ctx context.Context, id string) (*model.Media, error) {
	return findOne[model.Media](ctx, s.col(ColMedia), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColMedia), id)
}

func mediaFilter(f storage.MediaFilter) bson.D {
	filter := bson.D{}
	if f.UploadedByID != "" {
		filter = append(filter, bson.E{Key: "uploaded_by_id", Value: f.UploadedByID})
	}
	if f.MimePrefix != "" {
		filter = append(filter, bson.E{Key: "mimetype", Value: bson.D{
			{Key: "$regex", Value: "^" + f.MimePrefix + "/"},
		}})
	}
	return filter
}

func (s *Store) ListMedia(ctx context.Context, f storage.MediaFilter) ([]*model.Media, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(f.Skip)
	if f.Limit > 0 {
		opts = opts.SetLimit(f.Limit)
	}
	return findMany[model.Media](ctx, s.col(ColMedia), mediaFilter(f), opts)
}

func (s *Store) CountMedia(ctx context.Context, f storage.MediaFilter) (int64, error) {
	return countDocs(ctx, s.col(ColMedia), mediaFilter(f))
}
