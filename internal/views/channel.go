package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// ChannelProfile is the public projection of a channel. Password and session
// fields are omitted unconditionally, regardless of who is asking.
type ChannelProfile struct {
	ID                        bson.ObjectID `json:"id"`
	Username                  string        `json:"username"`
	Email                     string        `json:"email"`
	FullName                  string        `json:"fullName"`
	Avatar                    string        `json:"avatar"`
	CoverImage                string        `json:"coverImage,omitempty"`
	SubscribersCount          int64         `json:"subscribersCount"`
	ChannelsSubscribedToCount int64         `json:"channelsSubscribedToCount"`
	IsSubscribed              bool          `json:"isSubscribed"`
}

// ChannelStats aggregates a channel's headline numbers. The four rollups are
// computed independently; a channel with no activity reports zeros.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}

// ChannelVideo is a channel's video annotated with its like rollup.
type ChannelVideo struct {
	ID          bson.ObjectID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Views       int64         `json:"views"`
	CreatedAt   time.Time     `json:"createdAt"`
	LikesCount  int64         `json:"likesCount"`
}

// ChannelProfile resolves a channel by username and annotates it with
// subscription rollups and the viewer's membership flag. A zero viewer id
// means an anonymous caller; isSubscribed is then always false.
func (a *Aggregator) ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfile{}, apierr.New(apierr.KindInvalidArgument, "username is required")
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ChannelProfile{}, apierr.New(apierr.KindNotFound, "channel not found")
		}
		return ChannelProfile{}, fmt.Errorf("resolve channel: %w", err)
	}

	subscribers, err := a.subscriptions.CountByChannel(ctx, user.ID)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}

	subscribedTo, err := a.subscriptions.CountBySubscriber(ctx, user.ID)
	if err != nil {
		return ChannelProfile{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	var isSubscribed bool
	if !viewer.IsZero() {
		isSubscribed, err = a.subscriptions.Exists(ctx, viewer, user.ID)
		if err != nil {
			return ChannelProfile{}, fmt.Errorf("probe viewer subscription: %w", err)
		}
	}

	return ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		Email:                     user.Email,
		FullName:                  user.FullName,
		Avatar:                    user.Avatar,
		CoverImage:                user.CoverImage,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}

// ChannelStats combines four independent rollups: subscriber count, video
// count, view sum, and like count across the channel's videos. The reads are
// not transactional with each other; these are best-effort metrics.
func (a *Aggregator) ChannelStats(ctx context.Context, channel bson.ObjectID) (ChannelStats, error) {
	subscribers, err := a.subscriptions.CountByChannel(ctx, channel)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("count subscribers: %w", err)
	}

	videos, err := a.videos.ListByOwner(ctx, channel)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("list channel videos: %w", err)
	}

	stats := ChannelStats{
		TotalSubscribers: subscribers,
		TotalVideos:      int64(len(videos)),
	}

	videoIDs := make([]bson.ObjectID, 0, len(videos))
	for _, v := range videos {
		stats.TotalViews += v.Views
		videoIDs = append(videoIDs, v.ID)
	}

	likes, err := a.likes.ListByTargets(ctx, models.LikeTargetVideo, videoIDs)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("roll up video likes: %w", err)
	}
	stats.TotalLikes = int64(len(likes))

	return stats, nil
}

// ChannelVideos lists a channel's videos with per-video like rollups, newest
// first. An unknown channel yields an empty page, not an error.
func (a *Aggregator) ChannelVideos(ctx context.Context, channel bson.ObjectID, params PageParams) (Page[ChannelVideo], error) {
	videos, err := a.videos.ListByOwner(ctx, channel)
	if err != nil {
		return Page[ChannelVideo]{}, fmt.Errorf("list channel videos: %w", err)
	}

	videoIDs := make([]bson.ObjectID, 0, len(videos))
	for _, v := range videos {
		videoIDs = append(videoIDs, v.ID)
	}

	likes, err := a.likes.ListByTargets(ctx, models.LikeTargetVideo, videoIDs)
	if err != nil {
		return Page[ChannelVideo]{}, fmt.Errorf("roll up video likes: %w", err)
	}

	likeCounts := make(map[bson.ObjectID]int64, len(videos))
	for _, l := range likes {
		likeCounts[l.TargetID]++
	}

	items := make([]ChannelVideo, 0, len(videos))
	for _, v := range videos {
		items = append(items, ChannelVideo{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Views:       v.Views,
			CreatedAt:   v.CreatedAt,
			LikesCount:  likeCounts[v.ID],
		})
	}

	return NewPage(slicePage(items, params), int64(len(items)), params), nil
}
