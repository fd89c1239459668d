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

// MongoPlaylistRepository provides MongoDB-backed persistence for playlists.
type MongoPlaylistRepository struct {
	col *mongo.Collection
}

// NewMongoPlaylistRepository constructs a playlist repository over the provided database.
func NewMongoPlaylistRepository(database *mongo.Database) *MongoPlaylistRepository {
	return &MongoPlaylistRepository{col: database.Collection("playlists")}
}

// Create stores a new playlist.
func (r *MongoPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	if playlist.ID.IsZero() {
		playlist.ID = bson.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, playlist); err != nil {
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

// FindByID fetches a playlist by identifier.
func (r *MongoPlaylistRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error) {
	var playlist models.Playlist
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist by id: %w", err)
	}
	return playlist, nil
}

// ListByOwner returns the owner's playlists, most recently updated first.
func (r *MongoPlaylistRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Playlist, error) {
	cursor, err := r.col.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("query playlists by owner: %w", err)
	}

	var playlists []models.Playlist
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, fmt.Errorf("decode playlists: %w", err)
	}
	return playlists, nil
}

// Update modifies the playlist's name and description.
func (r *MongoPlaylistRepository) Update(ctx context.Context, id bson.ObjectID, name, description string) (models.Playlist, error) {
	var playlist models.Playlist
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "description": description, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	return playlist, nil
}

// Delete removes the playlist.
func (r *MongoPlaylistRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends the video to the playlist unless it is already present.
// The membership test and the append are one conditional update, so a playlist
// never accumulates duplicates even under concurrent adds.
func (r *MongoPlaylistRepository) AddVideo(ctx context.Context, id, videoID bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "videos": bson.M{"$ne": videoID}},
		bson.M{
			"$push": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("add video to playlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// RemoveVideo removes the video from the playlist's ordered sequence.
func (r *MongoPlaylistRepository) RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "videos": videoID},
		bson.M{
			"$pull": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("remove video from playlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ PlaylistRepository = (*MongoPlaylistRepository)(nil)
