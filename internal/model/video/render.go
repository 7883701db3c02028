package video

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Render is one post-processing (timeline compositing) job for a video.
type Render struct {
	ID string `bson:"id" json:"id"` // UUID

	VideoID  string `bson:"video_id" json:"video_id"`
	RenderID string `bson:"render_id,omitempty" json:"render_id,omitempty"` // remote editor job ID

	Status       Status `bson:"status" json:"status"`
	URL          string `bson:"url,omitempty" json:"url,omitempty"`
	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection returns the collection name.
func (r *Render) Collection() string { return "renders" }

// EnsureIndexes creates and maintains indexes.
func (r *Render) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_video_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
