package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
)

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Video, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Video, error)
	IncrementViews(ctx context.Context, id bson.ObjectID) error
	Update(ctx context.Context, id bson.ObjectID, title, description string) (models.Video, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// SubscriptionRepository exposes data access for subscription edges.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscriber, channel bson.ObjectID) error
	Delete(ctx context.Context, subscriber, channel bson.ObjectID) error
	Exists(ctx context.Context, subscriber, channel bson.ObjectID) (bool, error)
	CountByChannel(ctx context.Context, channel bson.ObjectID) (int64, error)
	CountBySubscriber(ctx context.Context, subscriber bson.ObjectID) (int64, error)
}

// LikeRepository exposes data access for like edges.
type LikeRepository interface {
	Create(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error
	Delete(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error
	Exists(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) (bool, error)
	CountByTarget(ctx context.Context, kind models.LikeTarget, target bson.ObjectID) (int64, error)
	ListByTargets(ctx context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error)
}

// CommentRepository exposes data access for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error)
	ListByVideo(ctx context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountByVideo(ctx context.Context, video bson.ObjectID) (int64, error)
	UpdateContent(ctx context.Context, id bson.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// PlaylistRepository exposes data access for playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Playlist, error)
	Update(ctx context.Context, id bson.ObjectID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	AddVideo(ctx context.Context, id, videoID bson.ObjectID) error
	RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) error
}
