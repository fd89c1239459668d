package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/storage"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory;
// larger parts spill to temporary files.
const maxUploadMemory = 32 << 20

// SessionService is the credential lifecycle surface the auth handler drives.
type SessionService interface {
	Login(ctx context.Context, usernameOrEmail, password string) (models.User, models.SessionTokens, error)
	Refresh(ctx context.Context, presented string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID bson.ObjectID) error
	ChangePassword(ctx context.Context, userID bson.ObjectID, oldPassword, newPassword string) error
}

// AccountStore is the slice of the user store the auth handler mutates.
type AccountStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	UpdateAccount(ctx context.Context, id bson.ObjectID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id bson.ObjectID, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id bson.ObjectID, url string) (models.User, error)
}

// PasswordHasher derives storable hashes for new credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// MediaStore uploads media assets and deletes them when a flow has to unwind.
type MediaStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (storage.Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// AuthHandler serves registration, the session lifecycle, and account updates.
type AuthHandler struct {
	users        AccountStore
	sessions     SessionService
	passwords    PasswordHasher
	media        MediaStore
	cookieSecure bool
}

// NewAuthHandler wires the handler's collaborators.
func NewAuthHandler(users AccountStore, sessions SessionService, passwords PasswordHasher, media MediaStore, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		passwords:    passwords,
		media:        media,
		cookieSecure: cookieSecure,
	}
}

// Register implements POST /api/v1/auth/register. The body is multipart: text
// fields plus a required avatar file and an optional cover image. Uploads that
// precede a failed insert are deleted again so a rejected registration leaves
// nothing behind in the media store.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInvalidArgument, "request must be multipart form data", err))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "fullName, email, username, and password are required"))
		return
	}

	hash, err := h.passwords.Hash(password)
	if err != nil {
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "hash password", err))
		return
	}

	var uploaded []string
	undo := func() {
		for _, publicID := range uploaded {
			if err := h.media.Delete(ctx, publicID); err != nil {
				logging.FromContext(ctx).Error("delete orphaned upload", "public_id", publicID, "error", err)
			}
		}
	}

	avatar, err := uploadFormFile(ctx, h.media, r, "avatar", true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	uploaded = append(uploaded, avatar.PublicID)

	cover, err := uploadFormFile(ctx, h.media, r, "coverImage", false)
	if err != nil {
		undo()
		respondError(ctx, w, err)
		return
	}
	if cover.PublicID != "" {
		uploaded = append(uploaded, cover.PublicID)
	}

	now := time.Now().UTC()
	user, err := h.users.Create(ctx, models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatar.URL,
		CoverImage: cover.URL,
		Password:   hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		undo()
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apierr.New(apierr.KindConflict, "a user with this email or username already exists"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "create user", err))
		return
	}

	respondData(ctx, w, http.StatusCreated, user.Public(), "user registered")
}

// Login implements POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	login := strings.ToLower(strings.TrimSpace(body.Username))
	if login == "" {
		login = strings.ToLower(strings.TrimSpace(body.Email))
	}

	user, tokens, err := h.sessions.Login(ctx, login, body.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens, h.cookieSecure)
	respondData(ctx, w, http.StatusOK, map[string]any{
		"user":         user.Public(),
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "logged in")
}

// Refresh implements POST /api/v1/auth/refresh. The refresh token comes from
// the cookie or the body; each token can be exchanged at most once.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			respondError(ctx, w, err)
			return
		}
	}

	presented := refreshTokenFrom(r, body.RefreshToken)
	if presented == "" {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "refresh token is required"))
		return
	}

	tokens, err := h.sessions.Refresh(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens, h.cookieSecure)
	respondData(ctx, w, http.StatusOK, map[string]any{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "session refreshed")
}

// Logout implements POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	if err := h.sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w, h.cookieSecure)
	respondData(ctx, w, http.StatusOK, nil, "logged out")
}

// ChangePassword implements POST /api/v1/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.sessions.ChangePassword(ctx, user.ID, body.OldPassword, body.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed")
}

// CurrentUser implements GET /api/v1/users/me.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	respondData(ctx, w, http.StatusOK, user.Public(), "current user")
}

// UpdateAccount implements PATCH /api/v1/users/me.
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, apierr.New(apierr.KindUnauthorized, "authentication required"))
		return
	}

	var body struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(ctx, w, err)
		return
	}

	fullName := strings.TrimSpace(body.FullName)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if fullName == "" || email == "" {
		respondError(ctx, w, apierr.New(apierr.KindInvalidArgument, "fullName and email are required"))
		return
	}

	updated, err := h.users.UpdateAccount(ctx, user.ID, fullName, email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apierr.New(apierr.KindConflict, "a user with this email already exists"))
			return
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "update account", err))
		return
	}

	respondData(ctx, w, http.StatusOK, updated.Public(), "account updated")
}

// UpdateAvatar implements PATCH /api/v1/users/me/avatar.
func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar)
}

// UpdateCoverImage implements PATCH /api/v1/users/me/cover.
func (h *AuthHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage)
}

func (h *AuthHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, apply func(context.Context, bson.ObjectID, string) (models.User, error)) {
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

	asset, err := uploadFormFile(ctx, h.media, r, field, true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := apply(ctx, user.ID, asset.URL)
	if err != nil {
		if delErr := h.media.Delete(ctx, asset.PublicID); delErr != nil {
			logging.FromContext(ctx).Error("delete orphaned upload", "public_id", asset.PublicID, "error", delErr)
		}
		respondError(ctx, w, apierr.Wrap(apierr.KindInternal, "update "+field, err))
		return
	}

	respondData(ctx, w, http.StatusOK, updated.Public(), field+" updated")
}

// uploadFormFile pushes the named multipart file to the media store. A missing
// optional file yields a zero Asset without error.
func uploadFormFile(ctx context.Context, media MediaStore, r *http.Request, field string, required bool) (storage.Asset, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			if required {
				return storage.Asset{}, apierr.New(apierr.KindInvalidArgument, field+" file is required")
			}
			return storage.Asset{}, nil
		}
		return storage.Asset{}, apierr.Wrap(apierr.KindInvalidArgument, "read "+field+" file", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	asset, err := media.Upload(ctx, header.Filename, file)
	if err != nil {
		return storage.Asset{}, apierr.Wrap(apierr.KindUploadFailed, "upload "+field, err)
	}
	return asset, nil
}
