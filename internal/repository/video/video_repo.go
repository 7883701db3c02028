// Package video persists generation requests and their renders.
package video

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidops/internal/model/video"
)

// VideoRepository is the video store interface the service layer depends on.
type VideoRepository interface {
	Create(ctx context.Context, v *video.Video) error
	FindByID(ctx context.Context, id string) (*video.Video, error)
	List(ctx context.Context, contentID string, status video.Status, limit int64) ([]*video.Video, error)
	Update(ctx context.Context, v *video.Video) error
}

// VideoRepo is the mongo implementation.
type VideoRepo struct {
	coll *mongo.Collection
}

// NewVideoRepo creates the repository.
func NewVideoRepo(db *mongo.Database) *VideoRepo {
	var v video.Video
	return &VideoRepo{coll: db.Collection(v.Collection())}
}

// Create inserts a new video request.
func (r *VideoRepo) Create(ctx context.Context, v *video.Video) error {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, v)
	return err
}

// FindByID looks up one video, excluding soft-deleted rows.
func (r *VideoRepo) FindByID(ctx context.Context, id string) (*video.Video, error) {
	var v video.Video
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns videos newest first, optionally filtered by content ID and
// status.
func (r *VideoRepo) List(ctx context.Context, contentID string, status video.Status, limit int64) ([]*video.Video, error) {
	filter := bson.M{"deleted_at": nil}
	if contentID != "" {
		filter["content_id"] = contentID
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var videos []*video.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Update replaces the stored document by ID.
func (r *VideoRepo) Update(ctx context.Context, v *video.Video) error {
	v.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"id": v.ID, "deleted_at": nil}, v)
	return err
}
