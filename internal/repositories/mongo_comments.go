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

// MongoCommentRepository provides MongoDB-backed persistence for comments.
type MongoCommentRepository struct {
	col *mongo.Collection
}

// NewMongoCommentRepository constructs a comment repository over the provided database.
func NewMongoCommentRepository(database *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{col: database.Collection("comments")}
}

// Create stores a new comment.
func (r *MongoCommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	if comment.ID.IsZero() {
		comment.ID = bson.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

// FindByID fetches a comment by identifier.
func (r *MongoCommentRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error) {
	var comment models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment by id: %w", err)
	}
	return comment, nil
}

// ListByVideo returns a page of the video's comments, newest first.
func (r *MongoCommentRepository) ListByVideo(ctx context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error) {
	cursor, err := r.col.Find(ctx, bson.M{"video": video},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query comments by video: %w", err)
	}

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// CountByVideo returns the total number of comments on the video.
func (r *MongoCommentRepository) CountByVideo(ctx context.Context, video bson.ObjectID) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"video": video})
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// UpdateContent replaces the comment body.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id bson.ObjectID, content string) (models.Comment, error) {
	var comment models.Comment
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes the comment.
func (r *MongoCommentRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ CommentRepository = (*MongoCommentRepository)(nil)
