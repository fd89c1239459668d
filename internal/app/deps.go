package app

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/handlers"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/storage"
	"github.com/clipstream/backend/internal/views"
)

// buildDependencies wires together the concrete implementations used by the
// HTTP handlers.
func buildDependencies(ctx context.Context, database *mongo.Database, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewMongoUserRepository(database)
	videos := repositories.NewMongoVideoRepository(database)
	subscriptions := repositories.NewMongoSubscriptionRepository(database)
	likes := repositories.NewMongoLikeRepository(database)
	comments := repositories.NewMongoCommentRepository(database)
	playlists := repositories.NewMongoPlaylistRepository(database)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewSessionManager(users, issuer, hasher)

	aggregator := views.NewAggregator(users, videos, subscriptions, likes, comments, playlists)
	stats := views.NewCachingStats(aggregator, cfg.StatsCacheTTL)

	media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	authenticator := handlers.NewAuthenticator(sessions, users)

	return handlers.Dependencies{
		Auth:      handlers.NewAuthHandler(users, sessions, hasher, media, cfg.CookieSecure),
		Channels:  handlers.NewChannelHandler(aggregator, stats, users, subscriptions),
		Videos:    handlers.NewVideoHandler(videos, media),
		Comments:  handlers.NewCommentHandler(aggregator, comments, videos),
		Playlists: handlers.NewPlaylistHandler(aggregator, playlists, videos),
		Likes:     handlers.NewLikeHandler(likes, videos, comments),
		History:   handlers.NewHistoryHandler(aggregator, users, videos),

		Authenticator: authenticator,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 10*time.Minute),
		Development:   cfg.Development,
	}, nil
}
