package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// VideoStore mutates the video catalog.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
	Update(ctx context.Context, id bson.ObjectID, title, description string) (models.Video, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// VideoHandler serves video publishing and owner-scoped mutations.
type VideoHandler struct {
	videos VideoStore
	media  MediaStore
}

// NewVideoHandler wires the handler's collaborators.
func NewVideoHandler(videos VideoStore, media MediaStore) *VideoHandler {
	return &VideoHandler{videos: videos, media: media}
}

// Publish implements POST /api/v1/videos. The body is multipart: a title,
// an optional description and duration, plus the video file and a thumbnail.
// Uploads that precede a failed insert are deleted again so a rejected publish
// leaves nothing behind in the media store.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInvalidArgument, "request must be multipart form data", err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "title is required"))
		return
	}

	var duration float64
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "duration must be a non-negative number"))
			return
		}
		duration = parsed
	}

	var uploaded []string
	undo := func() {
		for _, publicID := range uploaded {
			if err := h.media.Delete(ctx, publicID); err != nil {
				logging.FromContext(ctx).Error("delete orphaned upload", "public_id", publicID, "error", err)
			}
		}
	}

	videoFile, err := uploadFormFile(ctx, h.media, r, "videoFile", true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	uploaded = append(uploaded, videoFile.PublicID)

	thumbnail, err := uploadFormFile(ctx, h.media, r, "thumbnail", true)
	if err != nil {
		undo()
		respondError(ctx, w, err)
		return
	}
	uploaded = append(uploaded, thumbnail.PublicID)

	now := time.Now().UTC()
	video, err := h.videos.Create(ctx, models.Video{
		Owner:       user.ID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		VideoFile:   videoFile.URL,
		Thumbnail:   thumbnail.URL,
		Duration:    duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		undo()
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "create video", err))
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published")
}

// Update implements PATCH /api/v1/videos/{id}. Only the video's owner may
// edit it.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	title := strings.TrimSpace(body.Title)
	if title == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "title is required"))
		return
	}

	updated, err := h.videos.Update(ctx, video.ID, title, strings.TrimSpace(body.Description))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "update video", err))
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "video updated")
}

// Delete implements DELETE /api/v1/videos/{id}. Only the video's owner may
// remove it.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.videos.Delete(ctx, video.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "delete video", err))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video deleted")
}

// ownedVideo loads the addressed video and verifies the acting user owns it.
func (h *VideoHandler) ownedVideo(r *http.Request) (models.Video, error) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		return models.Video{}, apierr.New(apierr.KindUnauthorized, "authentication required")
	}

	videoID, err := parseObjectID(r.PathValue("id"), "video id")
	if err != nil {
		return models.Video{}, err
	}

	video, err := h.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apierr.New(apierr.KindNotFound, "video not found")
		}
		return models.Video{}, apierr.Wrap(apierr.KindInternal, "resolve video", err)
	}

	if video.Owner != user.ID {
		return models.Video{}, apierr.New(apierr.KindForbidden, "only the video owner may modify it")
	}
	return video, nil
}
