package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/clipstream/backend/internal/models"
)

// MongoVideoRepository provides MongoDB-backed persistence for videos.
type MongoVideoRepository struct {
	col *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository over the provided database.
func NewMongoVideoRepository(database *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{col: database.Collection("videos")}
}

// Create stores a new video record.
func (r *MongoVideoRepository) Create(ctx context.Context, video models.Video) (models.Video, error) {
	if video.ID.IsZero() {
		video.ID = bson.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

// FindByID fetches a video by identifier.
func (r *MongoVideoRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error) {
	var video models.Video
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video by id: %w", err)
	}
	return video, nil
}

// FindByIDs fetches every video whose identifier appears in ids. Missing ids
// are skipped; callers that care about sequence order reorder the result.
func (r *MongoVideoRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("query videos by ids: %w", err)
	}

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// ListByOwner returns the owner's videos in reverse chronological order.
func (r *MongoVideoRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Video, error) {
	cursor, err := r.col.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("query videos by owner: %w", err)
	}

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// IncrementViews bumps the view counter by one.
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Update modifies the video's title and description.
func (r *MongoVideoRepository) Update(ctx context.Context, id bson.ObjectID, title, description string) (models.Video, error) {
	var video models.Video
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title, "description": description, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

// Delete removes the video record.
func (r *MongoVideoRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ VideoRepository = (*MongoVideoRepository)(nil)
