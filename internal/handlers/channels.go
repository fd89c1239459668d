package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// ChannelViews is the read-side surface the channel handler serves from.
type ChannelViews interface {
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (views.ChannelProfile, error)
	ChannelVideos(ctx context.Context, channel bson.ObjectID, params views.PageParams) (views.Page[views.ChannelVideo], error)
}

// ChannelDirectory resolves usernames to accounts.
type ChannelDirectory interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// SubscriptionStore mutates and probes subscription edges.
type SubscriptionStore interface {
	Create(ctx context.Context, subscriber, channel bson.ObjectID) error
	Delete(ctx context.Context, subscriber, channel bson.ObjectID) error
	Exists(ctx context.Context, subscriber, channel bson.ObjectID) (bool, error)
}

// ChannelHandler serves channel profiles, statistics, video listings, and the
// subscribe toggle.
type ChannelHandler struct {
	views         ChannelViews
	stats         views.StatsSource
	users         ChannelDirectory
	subscriptions SubscriptionStore
}

// NewChannelHandler wires the handler's collaborators.
func NewChannelHandler(channelViews ChannelViews, stats views.StatsSource, users ChannelDirectory, subscriptions SubscriptionStore) *ChannelHandler {
	return &ChannelHandler{
		views:         channelViews,
		stats:         stats,
		users:         users,
		subscriptions: subscriptions,
	}
}

// Profile implements GET /api/v1/channels/{username}.
func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.views.ChannelProfile(ctx, r.PathValue("username"), viewerID(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile")
}

// Stats implements GET /api/v1/channels/{username}/stats.
func (h *ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channel, err := h.resolveChannel(ctx, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	stats, err := h.stats.ChannelStats(ctx, channel.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats")
}

// Videos implements GET /api/v1/channels/{username}/videos.
func (h *ChannelHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channel, err := h.resolveChannel(ctx, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	params, err := views.ParsePageParams(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.views.ChannelVideos(ctx, channel.ID, params)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, page, "channel videos")
}

// ToggleSubscription implements POST /api/v1/channels/{username}/subscribe.
// Subscribing twice unsubscribes; the response reports the resulting state.
func (h *ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	channel, err := h.resolveChannel(ctx, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if channel.ID == user.ID {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "cannot subscribe to your own channel"))
		return
	}

	subscribed, err := h.subscriptions.Exists(ctx, user.ID, channel.ID)
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "probe subscription", err))
		return
	}

	if subscribed {
		if err := h.subscriptions.Delete(ctx, user.ID, channel.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "remove subscription", err))
			return
		}
		respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": false}, "unsubscribed")
		return
	}

	if err := h.subscriptions.Create(ctx, user.ID, channel.ID); err != nil && !errors.Is(err, repositories.ErrConflict) {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "create subscription", err))
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": true}, "subscribed")
}

func (h *ChannelHandler) resolveChannel(ctx context.Context, username string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.User{}, apierr.New(apierr.KindInvalidArgument, "username is required")
	}

	channel, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apierr.New(apierr.KindNotFound, "channel not found")
		}
		return models.User{}, apierr.Wrap(apierr.KindInternal, "resolve channel", err)
	}
	return channel, nil
}
