// Package views builds the read-side projections the platform serves: channel
// profiles, comment lists, channel statistics, playlist resolutions, and watch
// history. The entity store has no join operator, so each view is an explicit
// function composing store reads: filter the base entities, expand foreign-key
// references, roll up derived scalars, test viewer membership, and shape the
// whitelisted output fields.
package views

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
)

// UserReader is the slice of the user store the aggregator reads through.
type UserReader interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// VideoReader is the slice of the video store the aggregator reads through.
type VideoReader interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Video, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Video, error)
}

// SubscriptionReader answers subscription counts and membership probes.
type SubscriptionReader interface {
	Exists(ctx context.Context, subscriber, channel bson.ObjectID) (bool, error)
	CountByChannel(ctx context.Context, channel bson.ObjectID) (int64, error)
	CountBySubscriber(ctx context.Context, subscriber bson.ObjectID) (int64, error)
}

// LikeReader answers like rollups and membership probes.
type LikeReader interface {
	ListByTargets(ctx context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error)
}

// CommentReader is the slice of the comment store the aggregator reads through.
type CommentReader interface {
	ListByVideo(ctx context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountByVideo(ctx context.Context, video bson.ObjectID) (int64, error)
}

// PlaylistReader is the slice of the playlist store the aggregator reads through.
type PlaylistReader interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Playlist, error)
}

// Aggregator composes entity store reads into derived views. It holds no
// mutable state and is safe for concurrent use.
type Aggregator struct {
	users         UserReader
	videos        VideoReader
	subscriptions SubscriptionReader
	likes         LikeReader
	comments      CommentReader
	playlists     PlaylistReader
}

// NewAggregator wires the aggregator's store dependencies.
func NewAggregator(users UserReader, videos VideoReader, subscriptions SubscriptionReader, likes LikeReader, comments CommentReader, playlists PlaylistReader) *Aggregator {
	return &Aggregator{
		users:         users,
		videos:        videos,
		subscriptions: subscriptions,
		likes:         likes,
		comments:      comments,
		playlists:     playlists,
	}
}

// Owner is the trimmed user sub-object embedded in nested projections.
type Owner struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func ownerOf(u models.User) Owner {
	return Owner{Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}
