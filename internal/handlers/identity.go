package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type ctxKey string

const identityKey ctxKey = "identity"

// AccessVerifier validates access tokens for the authentication middleware.
type AccessVerifier interface {
	VerifyAccess(token string) (auth.AccessClaims, error)
}

// IdentityStore loads the acting user once their token checks out.
type IdentityStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
}

// Authenticator resolves the acting user from the request's access token.
type Authenticator struct {
	sessions AccessVerifier
	users    IdentityStore
}

// NewAuthenticator wires the middleware's collaborators.
func NewAuthenticator(sessions AccessVerifier, users IdentityStore) *Authenticator {
	return &Authenticator{sessions: sessions, users: users}
}

// Require rejects requests without a valid access token and loads the acting
// user into the request context before calling next.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolve(r)
		if err != nil {
			respondError(r.Context(), w, err)
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), user)))
	}
}

// Optional loads the acting user when a valid token is present and proceeds
// anonymously otherwise. Views use this to decide membership flags.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if accessTokenFrom(r) == "" {
			next(w, r)
			return
		}
		user, err := a.resolve(r)
		if err != nil {
			next(w, r)
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), user)))
	}
}

func (a *Authenticator) resolve(r *http.Request) (models.User, error) {
	token := accessTokenFrom(r)
	if token == "" {
		return models.User{}, apierr.New(apierr.KindUnauthorized, "authentication required")
	}

	claims, err := a.sessions.VerifyAccess(token)
	if err != nil {
		return models.User{}, err
	}

	userID, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return models.User{}, apierr.New(apierr.KindUnauthorized, "invalid access token")
	}

	user, err := a.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apierr.New(apierr.KindUnauthorized, "invalid access token")
		}
		return models.User{}, apierr.Wrap(apierr.KindInternal, "load acting user", err)
	}

	return user, nil
}

func withIdentity(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// identityFrom returns the authenticated user placed on the context by the
// Authenticator. ok is false for anonymous requests.
func identityFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(identityKey).(models.User)
	return user, ok
}

// viewerID returns the acting user's id, or the zero id for anonymous callers.
func viewerID(ctx context.Context) bson.ObjectID {
	user, ok := identityFrom(ctx)
	if !ok {
		return bson.ObjectID{}
	}
	return user.ID
}
