package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// indexes are load-bearing: username/email uniqueness, the one-edge-per-pair
// subscription invariant, and the one-like-per-target invariant are all
// enforced here rather than in application code.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"videos": {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "channel", Value: 1}}},
		},
		"likes": {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "targetKind", Value: 1}, {Key: "targetId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "targetKind", Value: 1}, {Key: "targetId", Value: 1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"playlists": {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
	}

	for collection, models := range specs {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}

	return nil
}
