package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// PlaylistVideo is the trimmed video projection embedded in a resolved playlist.
type PlaylistVideo struct {
	ID          bson.ObjectID `json:"id"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// PlaylistView is a playlist with its video sequence expanded in order, its
// owner expanded and trimmed, and its rollups computed.
type PlaylistView struct {
	ID          bson.ObjectID   `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       Owner           `json:"owner"`
	Videos      []PlaylistVideo `json:"videos"`
	TotalVideos int64           `json:"totalVideos"`
	TotalViews  int64           `json:"totalViews"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PlaylistSummary is the rollup-only projection used when listing a user's
// playlists.
type PlaylistSummary struct {
	ID          bson.ObjectID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	TotalVideos int64         `json:"totalVideos"`
	TotalViews  int64         `json:"totalViews"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PlaylistByID resolves a playlist into its nested projection. The expansion
// preserves the playlist's stored video order, not creation order.
func (a *Aggregator) PlaylistByID(ctx context.Context, id bson.ObjectID) (PlaylistView, error) {
	playlist, err := a.playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return PlaylistView{}, apierr.New(apierr.KindNotFound, "playlist not found")
		}
		return PlaylistView{}, fmt.Errorf("resolve playlist: %w", err)
	}

	videos, err := a.videos.FindByIDs(ctx, playlist.Videos)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("expand playlist videos: %w", err)
	}
	videosByID := make(map[bson.ObjectID]models.Video, len(videos))
	for _, v := range videos {
		videosByID[v.ID] = v
	}

	owner, err := a.users.FindByID(ctx, playlist.Owner)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return PlaylistView{}, fmt.Errorf("expand playlist owner: %w", err)
	}

	view := PlaylistView{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       ownerOf(owner),
		Videos:      make([]PlaylistVideo, 0, len(playlist.Videos)),
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}

	for _, videoID := range playlist.Videos {
		v, ok := videosByID[videoID]
		if !ok {
			// Referenced video has been deleted; skip it.
			continue
		}
		view.Videos = append(view.Videos, PlaylistVideo{
			ID:          v.ID,
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Title:       v.Title,
			Description: v.Description,
			Duration:    v.Duration,
			Views:       v.Views,
			CreatedAt:   v.CreatedAt,
		})
		view.TotalViews += v.Views
	}
	view.TotalVideos = int64(len(view.Videos))

	return view, nil
}

// UserPlaylists lists the owner's playlists with their rollups. An owner with
// no playlists yields an empty slice, not an error.
func (a *Aggregator) UserPlaylists(ctx context.Context, owner bson.ObjectID) ([]PlaylistSummary, error) {
	playlists, err := a.playlists.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	var videoIDs []bson.ObjectID
	for _, p := range playlists {
		videoIDs = append(videoIDs, p.Videos...)
	}

	videos, err := a.videos.FindByIDs(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("expand playlist videos: %w", err)
	}
	viewsByID := make(map[bson.ObjectID]int64, len(videos))
	for _, v := range videos {
		viewsByID[v.ID] = v.Views
	}

	summaries := make([]PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		summary := PlaylistSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			UpdatedAt:   p.UpdatedAt,
		}
		for _, videoID := range p.Videos {
			if views, ok := viewsByID[videoID]; ok {
				summary.TotalVideos++
				summary.TotalViews += views
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
