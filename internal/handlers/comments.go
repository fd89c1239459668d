package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// CommentViews serves the paginated comment projection.
type CommentViews interface {
	VideoComments(ctx context.Context, videoID, viewer bson.ObjectID, params views.PageParams) (views.Page[views.CommentView], error)
}

// CommentStore mutates comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error)
	UpdateContent(ctx context.Context, id bson.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// VideoProbe checks that a referenced video exists before hanging state off it.
type VideoProbe interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
}

// CommentHandler serves the comment list view and owner-scoped mutations.
type CommentHandler struct {
	views    CommentViews
	comments CommentStore
	videos   VideoProbe
}

// NewCommentHandler wires the handler's collaborators.
func NewCommentHandler(commentViews CommentViews, comments CommentStore, videos VideoProbe) *CommentHandler {
	return &CommentHandler{views: commentViews, comments: comments, videos: videos}
}

// List implements GET /api/v1/videos/{id}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := parseObjectID(r.PathValue("id"), "video id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	params, err := views.ParsePageParams(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.views.VideoComments(ctx, videoID, viewerID(ctx), params)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, page, "video comments")
}

// Add implements POST /api/v1/videos/{id}/comments.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "content is required"))
		return
	}

	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "resolve video", err))
		return
	}

	now := time.Now().UTC()
	comment, err := h.comments.Create(ctx, models.Comment{
		Content:   content,
		Video:     videoID,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "create comment", err))
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added")
}

// Update implements PATCH /api/v1/comments/{id}. Only the comment's owner may
// edit it.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "content is required"))
		return
	}

	updated, err := h.comments.UpdateContent(ctx, comment.ID, content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "comment not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "update comment", err))
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "comment updated")
}

// Delete implements DELETE /api/v1/comments/{id}. Only the comment's owner may
// remove it.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.comments.Delete(ctx, comment.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "delete comment", err))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted")
}

// ownedComment loads the addressed comment and verifies the acting user owns it.
func (h *CommentHandler) ownedComment(r *http.Request) (models.Comment, error) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		return models.Comment{}, apierr.New(apierr.KindUnauthorized, "authentication required")
	}

	commentID, err := parseObjectID(r.PathValue("id"), "comment id")
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := h.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, apierr.New(apierr.KindNotFound, "comment not found")
		}
		return models.Comment{}, apierr.Wrap(apierr.KindInternal, "resolve comment", err)
	}

	if comment.Owner != user.ID {
		return models.Comment{}, apierr.New(apierr.KindForbidden, "only the comment owner may modify it")
	}
	return comment, nil
}

// parseObjectID converts a path segment into an entity id.
func parseObjectID(raw, what string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return bson.ObjectID{}, apierr.New(apierr.KindInvalidArgument, "invalid "+what)
	}
	return id, nil
}
