// Package video holds the persistent entities of the generation pipeline.
package video

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Video is one generation request and its outcome.
type Video struct {
	ID string `bson:"id" json:"id"` // UUID

	// Request fields as submitted by the caller.
	ContentID      string `bson:"content_id" json:"content_id"`
	Caption        string `bson:"caption" json:"caption"`
	Duration       int    `bson:"duration" json:"duration"`
	VideoType      string `bson:"video_type" json:"video_type"`
	Objective      string `bson:"objective,omitempty" json:"objective,omitempty"`
	BudgetPriority string `bson:"budget_priority,omitempty" json:"budget_priority,omitempty"`
	HasAudio       bool   `bson:"has_audio" json:"has_audio"`

	// Selection outcome.
	ProviderID    string  `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	ProviderName  string  `bson:"provider_name,omitempty" json:"provider_name,omitempty"`
	ProviderType  string  `bson:"provider_type,omitempty" json:"provider_type,omitempty"`
	SelectionWhy  string  `bson:"selection_why,omitempty" json:"selection_why,omitempty"`
	EstimatedCost float64 `bson:"estimated_cost,omitempty" json:"estimated_cost,omitempty"`

	// Generation outcome.
	TaskID        string  `bson:"task_id,omitempty" json:"task_id,omitempty"`
	VideoURL      string  `bson:"video_url,omitempty" json:"video_url,omitempty"`
	RealDuration  float64 `bson:"real_duration,omitempty" json:"real_duration,omitempty"`
	AudioURL      string  `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioBackend  string  `bson:"audio_backend,omitempty" json:"audio_backend,omitempty"`
	AssetFileID   string  `bson:"asset_file_id,omitempty" json:"asset_file_id,omitempty"`
	EnhancedURL   string  `bson:"enhanced_url,omitempty" json:"enhanced_url,omitempty"`
	Status        Status  `bson:"status" json:"status"`
	Stage         Stage   `bson:"stage" json:"stage"`
	ErrorMessage  string  `bson:"error_message,omitempty" json:"error_message,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection returns the collection name.
func (v *Video) Collection() string { return "videos" }

// EnsureIndexes creates and maintains indexes.
func (v *Video) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(v.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "content_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_content_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
		{
			Keys:    bson.D{{Key: "task_id", Value: 1}},
			Options: options.Index().SetName("idx_task_id"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
