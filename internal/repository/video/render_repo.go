package video

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidops/internal/model/video"
)

// RenderRepository is the render store interface.
type RenderRepository interface {
	Create(ctx context.Context, r *video.Render) error
	FindByVideoID(ctx context.Context, videoID string) ([]*video.Render, error)
	Update(ctx context.Context, r *video.Render) error
}

// RenderRepo is the mongo implementation.
type RenderRepo struct {
	coll *mongo.Collection
}

// NewRenderRepo creates the repository.
func NewRenderRepo(db *mongo.Database) *RenderRepo {
	var r video.Render
	return &RenderRepo{coll: db.Collection(r.Collection())}
}

// Create inserts a new render record.
func (r *RenderRepo) Create(ctx context.Context, rec *video.Render) error {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

// FindByVideoID returns renders for a video, newest first.
func (r *RenderRepo) FindByVideoID(ctx context.Context, videoID string) ([]*video.Render, error) {
	filter := bson.M{"video_id": videoID, "deleted_at": nil}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var renders []*video.Render
	if err := cur.All(ctx, &renders); err != nil {
		return nil, err
	}
	return renders, nil
}

// Update replaces the stored document by ID.
func (r *RenderRepo) Update(ctx context.Context, rec *video.Render) error {
	rec.UpdatedAt = time.Now()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"id": rec.ID, "deleted_at": nil}, rec)
	return err
}
