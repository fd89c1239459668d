package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// HistoryViews serves the expanded watch-history projection.
type HistoryViews interface {
	WatchHistory(ctx context.Context, userID bson.ObjectID) ([]views.HistoryVideo, error)
}

// WatchHistoryStore records watched videos on the user document.
type WatchHistoryStore interface {
	AppendWatchHistory(ctx context.Context, id, videoID bson.ObjectID) error
}

// WatchableVideoStore resolves videos and bumps their view counters.
type WatchableVideoStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
	IncrementViews(ctx context.Context, id bson.ObjectID) error
}

// HistoryHandler serves the watch-history view and the watch action.
type HistoryHandler struct {
	views  HistoryViews
	users  WatchHistoryStore
	videos WatchableVideoStore
}

// NewHistoryHandler wires the handler's collaborators.
func NewHistoryHandler(historyViews HistoryViews, users WatchHistoryStore, videos WatchableVideoStore) *HistoryHandler {
	return &HistoryHandler{views: historyViews, users: users, videos: videos}
}

// List implements GET /api/v1/users/me/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	history, err := h.views.WatchHistory(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history")
}

// Watch implements POST /api/v1/videos/{id}/watch. It records the video at the
// head of the user's history and bumps the video's view counter.
func (h *HistoryHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	videoID, err := parseObjectID(r.PathValue("id"), "video id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "resolve video", err))
		return
	}

	if err := h.users.AppendWatchHistory(ctx, user.ID, video.ID); err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "record watch history", err))
		return
	}

	if err := h.videos.IncrementViews(ctx, video.ID); err != nil {
		// The watch is already recorded; a lost view increment is not worth
		// failing the request over.
		logging.FromContext(ctx).Error("increment video views", "video_id", video.ID.Hex(), "error", err)
	}

	respondData(ctx, w, http.StatusOK, nil, "video watched")
}
