package handlers

import (
	"net/http"
)

// Dependencies carries the wired handlers and cross-cutting collaborators the
// route table needs.
type Dependencies struct {
	Auth      *AuthHandler
	Channels  *ChannelHandler
	Videos    *VideoHandler
	Comments  *CommentHandler
	Playlists *PlaylistHandler
	Likes     *LikeHandler
	History   *HistoryHandler

	Authenticator *Authenticator
	AuthLimiter   RateLimiter
	Development   bool
}

// RegisterRoutes attaches every endpoint to the mux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	development = deps.Development
	authn := deps.Authenticator

	mux.HandleFunc("GET /healthz", HealthHandler{}.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", rateLimited(deps.AuthLimiter, "register", deps.Auth.Register))
	mux.HandleFunc("POST /api/v1/auth/login", rateLimited(deps.AuthLimiter, "login", deps.Auth.Login))
	mux.HandleFunc("POST /api/v1/auth/refresh", deps.Auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authn.Require(deps.Auth.Logout))
	mux.HandleFunc("POST /api/v1/auth/change-password", authn.Require(deps.Auth.ChangePassword))

	mux.HandleFunc("GET /api/v1/users/me", authn.Require(deps.Auth.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/me", authn.Require(deps.Auth.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/me/avatar", authn.Require(deps.Auth.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/me/cover", authn.Require(deps.Auth.UpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/me/history", authn.Require(deps.History.List))
	mux.HandleFunc("GET /api/v1/users/{id}/playlists", deps.Playlists.ListByUser)

	mux.HandleFunc("GET /api/v1/channels/{username}", authn.Optional(deps.Channels.Profile))
	mux.HandleFunc("GET /api/v1/channels/{username}/stats", deps.Channels.Stats)
	mux.HandleFunc("GET /api/v1/channels/{username}/videos", deps.Channels.Videos)
	mux.HandleFunc("POST /api/v1/channels/{username}/subscribe", authn.Require(deps.Channels.ToggleSubscription))

	mux.HandleFunc("POST /api/v1/videos", authn.Require(deps.Videos.Publish))
	mux.HandleFunc("PATCH /api/v1/videos/{id}", authn.Require(deps.Videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{id}", authn.Require(deps.Videos.Delete))

	mux.HandleFunc("GET /api/v1/videos/{id}/comments", authn.Optional(deps.Comments.List))
	mux.HandleFunc("POST /api/v1/videos/{id}/comments", authn.Require(deps.Comments.Add))
	mux.HandleFunc("PATCH /api/v1/comments/{id}", authn.Require(deps.Comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{id}", authn.Require(deps.Comments.Delete))

	mux.HandleFunc("POST /api/v1/videos/{id}/like", authn.Require(deps.Likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/comments/{id}/like", authn.Require(deps.Likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/videos/{id}/watch", authn.Require(deps.History.Watch))

	mux.HandleFunc("POST /api/v1/playlists", authn.Require(deps.Playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{id}", deps.Playlists.Get)
	mux.HandleFunc("PATCH /api/v1/playlists/{id}", authn.Require(deps.Playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", authn.Require(deps.Playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{id}/videos/{videoID}", authn.Require(deps.Playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/videos/{videoID}", authn.Require(deps.Playlists.RemoveVideo))
}

// rateLimited guards an endpoint with the per-IP limiter.
func rateLimited(limiter RateLimiter, scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRequest(limiter, r, scope) {
			writeJSON(r.Context(), w, http.StatusTooManyRequests, envelope{
				StatusCode: http.StatusTooManyRequests,
				Message:    "too many requests",
				Errors:     []string{"too many requests"},
				Success:    false,
			})
			return
		}
		next(w, r)
	}
}
