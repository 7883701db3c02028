package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	videomodel "vidops/internal/model/video"
)

// indexed is implemented by entities that maintain their own indexes.
type indexed interface {
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureIndexes creates indexes for all collections.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entities := []indexed{
		&videomodel.Video{},
		&videomodel.Render{},
	}

	for _, e := range entities {
		if err := e.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
