package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// HistoryVideo is a watched video with its owner expanded into a trimmed
// sub-object.
type HistoryVideo struct {
	ID          bson.ObjectID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       Owner         `json:"owner"`
}

// WatchHistory expands the user's watch-history sequence into videos, each
// with its owner expanded, preserving the watch order (most recent first).
func (a *Aggregator) WatchHistory(ctx context.Context, userID bson.ObjectID) ([]HistoryVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.WatchHistory")
	defer span.End()

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierr.New(apierr.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	videos, err := a.videos.FindByIDs(ctx, user.WatchHistory)
	if err != nil {
		return nil, fmt.Errorf("expand watch history: %w", err)
	}
	videosByID := make(map[bson.ObjectID]models.Video, len(videos))
	ownerIDs := make([]bson.ObjectID, 0, len(videos))
	for _, v := range videos {
		videosByID[v.ID] = v
		ownerIDs = append(ownerIDs, v.Owner)
	}

	owners, err := a.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("expand video owners: %w", err)
	}
	ownersByID := make(map[bson.ObjectID]models.User, len(owners))
	for _, u := range owners {
		ownersByID[u.ID] = u
	}

	history := make([]HistoryVideo, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		v, ok := videosByID[videoID]
		if !ok {
			continue
		}
		history = append(history, HistoryVideo{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Duration:    v.Duration,
			Views:       v.Views,
			CreatedAt:   v.CreatedAt,
			Owner:       ownerOf(ownersByID[v.Owner]),
		})
	}

	return history, nil
}
