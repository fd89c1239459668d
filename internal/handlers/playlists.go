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

// PlaylistViews serves the resolved playlist projections.
type PlaylistViews interface {
	PlaylistByID(ctx context.Context, id bson.ObjectID) (views.PlaylistView, error)
	UserPlaylists(ctx context.Context, owner bson.ObjectID) ([]views.PlaylistSummary, error)
}

// PlaylistStore mutates playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error)
	Update(ctx context.Context, id bson.ObjectID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	AddVideo(ctx context.Context, id, videoID bson.ObjectID) error
	RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) error
}

// PlaylistHandler serves playlist views and owner-scoped mutations.
type PlaylistHandler struct {
	views     PlaylistViews
	playlists PlaylistStore
	videos    VideoProbe
}

// NewPlaylistHandler wires the handler's collaborators.
func NewPlaylistHandler(playlistViews PlaylistViews, playlists PlaylistStore, videos VideoProbe) *PlaylistHandler {
	return &PlaylistHandler{views: playlistViews, playlists: playlists, videos: videos}
}

// Create implements POST /api/v1/playlists.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "name is required"))
		return
	}

	now := time.Now().UTC()
	playlist, err := h.playlists.Create(ctx, models.Playlist{
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		Owner:       user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "create playlist", err))
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// Get implements GET /api/v1/playlists/{id}.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseObjectID(r.PathValue("id"), "playlist id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	view, err := h.views.PlaylistByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, view, "playlist")
}

// ListByUser implements GET /api/v1/users/{id}/playlists.
func (h *PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := parseObjectID(r.PathValue("id"), "user id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	summaries, err := h.views.UserPlaylists(ctx, owner)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, summaries, "user playlists")
}

// Update implements PATCH /api/v1/playlists/{id}.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "name is required"))
		return
	}

	updated, err := h.playlists.Update(ctx, playlist.ID, name, strings.TrimSpace(body.Description))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "playlist not found"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "update playlist", err))
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "playlist updated")
}

// Delete implements DELETE /api/v1/playlists/{id}.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.playlists.Delete(ctx, playlist.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "delete playlist", err))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo implements POST /api/v1/playlists/{id}/videos/{videoID}. Adding a
// video already in the playlist is a conflict, enforced atomically by the
// store.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videoID, err := parseObjectID(r.PathValue("videoID"), "video id")
	if err != nil {
		respondError(ctx, w, err)
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

	if err := h.playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, apierr.New(apierr.KindConflict, "video is already in the playlist"))
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "playlist not found"))
		default:
			respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "add video to playlist", err))
		}
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo implements DELETE /api/v1/playlists/{id}/videos/{videoID}.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videoID, err := parseObjectID(r.PathValue("videoID"), "video id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.New(apierr.KindNotFound, "video is not in the playlist"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "remove video from playlist", err))
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

// ownedPlaylist loads the addressed playlist and verifies the acting user owns it.
func (h *PlaylistHandler) ownedPlaylist(r *http.Request, param string) (models.Playlist, error) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		return models.Playlist{}, apierr.New(apierr.KindUnauthorized, "authentication required")
	}

	id, err := parseObjectID(r.PathValue(param), "playlist id")
	if err != nil {
		return models.Playlist{}, err
	}

	playlist, err := h.playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, apierr.New(apierr.KindNotFound, "playlist not found")
		}
		return models.Playlist{}, apierr.Wrap(apierr.KindInternal, "resolve playlist", err)
	}

	if playlist.Owner != user.ID {
		return models.Playlist{}, apierr.New(apierr.KindForbidden, "only the playlist owner may modify it")
	}
	return playlist, nil
}
