package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/clipstream/backend/internal/models"
)

// MongoSubscriptionRepository persists subscriber-follows-channel edges.
type MongoSubscriptionRepository struct {
	col *mongo.Collection
}

// NewMongoSubscriptionRepository constructs a subscription repository over the
// provided database.
func NewMongoSubscriptionRepository(database *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{col: database.Collection("subscriptions")}
}

// Create inserts the edge. The compound unique index guarantees at most one
// edge per (subscriber, channel) pair.
func (r *MongoSubscriptionRepository) Create(ctx context.Context, subscriber, channel bson.ObjectID) error {
	edge := models.Subscription{
		ID:         bson.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Delete removes the edge.
func (r *MongoSubscriptionRepository) Delete(ctx context.Context, subscriber, channel bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether subscriber follows channel.
func (r *MongoSubscriptionRepository) Exists(ctx context.Context, subscriber, channel bson.ObjectID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return false, fmt.Errorf("probe subscription: %w", err)
	}
	return count > 0, nil
}

// CountByChannel returns the channel's subscriber count.
func (r *MongoSubscriptionRepository) CountByChannel(ctx context.Context, channel bson.ObjectID) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"channel": channel})
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

// CountBySubscriber returns how many channels the user follows.
func (r *MongoSubscriptionRepository) CountBySubscriber(ctx context.Context, subscriber bson.ObjectID) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"subscriber": subscriber})
	if err != nil {
		return 0, fmt.Errorf("count subscribed channels: %w", err)
	}
	return count, nil
}

var _ SubscriptionRepository = (*MongoSubscriptionRepository)(nil)

// MongoLikeRepository persists like edges for videos and comments.
type MongoLikeRepository struct {
	col *mongo.Collection
}

// NewMongoLikeRepository constructs a like repository over the provided database.
func NewMongoLikeRepository(database *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{col: database.Collection("likes")}
}

// Create inserts the like edge; the unique index rejects a second like for the
// same (user, target) pair.
func (r *MongoLikeRepository) Create(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	edge := models.Like{
		ID:         bson.NewObjectID(),
		LikedBy:    likedBy,
		TargetKind: kind,
		TargetID:   target,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Delete removes the like edge.
func (r *MongoLikeRepository) Delete(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"likedBy": likedBy, "targetKind": kind, "targetId": target})
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the user has liked the target.
func (r *MongoLikeRepository) Exists(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"likedBy": likedBy, "targetKind": kind, "targetId": target})
	if err != nil {
		return false, fmt.Errorf("probe like: %w", err)
	}
	return count > 0, nil
}

// CountByTarget returns the number of likes on a single target.
func (r *MongoLikeRepository) CountByTarget(ctx context.Context, kind models.LikeTarget, target bson.ObjectID) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"targetKind": kind, "targetId": target})
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// ListByTargets fetches every like pointing at any of the targets, letting
// callers roll up per-target counts and membership in one round trip.
func (r *MongoLikeRepository) ListByTargets(ctx context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"targetKind": kind, "targetId": bson.M{"$in": targets}})
	if err != nil {
		return nil, fmt.Errorf("query likes by targets: %w", err)
	}

	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	return likes, nil
}

var _ LikeRepository = (*MongoLikeRepository)(nil)
