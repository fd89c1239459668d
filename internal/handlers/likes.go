package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// LikeStore mutates and probes like edges.
type LikeStore interface {
	Create(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error
	Delete(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error
	Exists(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) (bool, error)
	CountByTarget(ctx context.Context, kind models.LikeTarget, target bson.ObjectID) (int64, error)
}

// CommentProbe checks that a referenced comment exists.
type CommentProbe interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error)
}

// LikeHandler serves the like toggles. A user holds at most one like per
// target; liking a liked target removes the like.
type LikeHandler struct {
	likes    LikeStore
	videos   VideoProbe
	comments CommentProbe
}

// NewLikeHandler wires the handler's collaborators.
func NewLikeHandler(likes LikeStore, videos VideoProbe, comments CommentProbe) *LikeHandler {
	return &LikeHandler{likes: likes, videos: videos, comments: comments}
}

// ToggleVideo implements POST /api/v1/videos/{id}/like.
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := parseObjectID(r.PathValue("id"), "video id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.videos.FindByID(ctx, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "resolve video", err))
		return
	}

	h.toggle(w, r, models.LikeTargetVideo, target)
}

// ToggleComment implements POST /api/v1/comments/{id}/like.
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := parseObjectID(r.PathValue("id"), "comment id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.comments.FindByID(ctx, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "comment not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "resolve comment", err))
		return
	}

	h.toggle(w, r, models.LikeTargetComment, target)
}

func (h *LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTarget, target bson.ObjectID) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	liked, err := h.likes.Exists(ctx, user.ID, kind, target)
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "probe like", err))
		return
	}

	if liked {
		err = h.likes.Delete(ctx, user.ID, kind, target)
	} else {
		err = h.likes.Create(ctx, user.ID, kind, target)
	}
	// A racing toggle may have flipped the edge first; the count below still
	// reflects the final state.
	if err != nil && !errors.Is(err, repositories.ErrNotFound) && !errors.Is(err, repositories.ErrConflict) {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "toggle like", err))
		return
	}

	count, err := h.likes.CountByTarget(ctx, kind, target)
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "count likes", err))
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{
		"liked":      !liked,
		"likesCount": count,
	}, "like toggled")
}
