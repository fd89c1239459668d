package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// CredentialStore is the slice of the user store the session manager needs.
// The stored refresh token is a single slot on the user document.
type CredentialStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, previous, next string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	SetPassword(ctx context.Context, id bson.ObjectID, hash string) error
}

// SessionManager owns the credential lifecycle: login, refresh rotation,
// logout, and password changes. One refresh credential is valid per user at a
// time; issuing a new one invalidates the previous.
type SessionManager struct {
	users     CredentialStore
	tokens    *TokenIssuer
	passwords PasswordHasher
}

// NewSessionManager wires the manager's collaborators.
func NewSessionManager(users CredentialStore, tokens *TokenIssuer, passwords PasswordHasher) *SessionManager {
	if users == nil || tokens == nil {
		panic("auth: session manager requires a credential store and token issuer")
	}
	return &SessionManager{users: users, tokens: tokens, passwords: passwords}
}

// Login verifies the password for the user matching usernameOrEmail, issues a
// token pair, and persists the refresh token as the user's sole session
// credential. A prior session's refresh token is silently invalidated by the
// overwrite.
func (m *SessionManager) Login(ctx context.Context, usernameOrEmail, password string) (models.User, models.SessionTokens, error) {
	if usernameOrEmail == "" || password == "" {
		return models.User{}, models.SessionTokens{}, apierr.New(apierr.KindInvalidArgument, "username or email and password are required")
	}

	user, err := m.users.FindByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, models.SessionTokens{}, apierr.New(apierr.KindNotFound, "user not found")
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("look up user for login: %w", err)
	}

	if !m.passwords.Verify(password, user.Password) {
		return models.User{}, models.SessionTokens{}, apierr.New(apierr.KindUnauthorized, "invalid credentials")
	}

	tokens, err := m.issue(user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("store session credential: %w", err)
	}

	user.RefreshToken = tokens.RefreshToken
	return user, tokens, nil
}

// Refresh exchanges a presented refresh token for a new pair and rotates the
// stored credential. The presented token must both verify and match the stored
// slot exactly; a token superseded by a later rotation is rejected even though
// its signature is still valid. The compare and overwrite happen as one
// conditional store update, so concurrent refreshes with the same token cannot
// both rotate.
func (m *SessionManager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	userID, err := m.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, apierr.New(apierr.KindUnauthorized, "invalid refresh token")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apierr.New(apierr.KindUnauthorized, "invalid refresh token")
		}
		return models.SessionTokens{}, fmt.Errorf("look up user for refresh: %w", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return models.SessionTokens{}, apierr.New(apierr.KindUnauthorized, "refresh token has been rotated or revoked")
	}

	tokens, err := m.issue(user)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.RotateRefreshToken(ctx, user.ID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the rotation race: the slot no longer holds the presented token.
			return models.SessionTokens{}, apierr.New(apierr.KindUnauthorized, "refresh token has been rotated or revoked")
		}
		return models.SessionTokens{}, fmt.Errorf("rotate session credential: %w", err)
	}

	return tokens, nil
}

// Logout clears the stored credential unconditionally. Calling it for a user
// with no active session is a no-op.
func (m *SessionManager) Logout(ctx context.Context, userID bson.ObjectID) error {
	if err := m.users.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear session credential: %w", err)
	}
	return nil
}

// ChangePassword verifies the old password before storing the new hash. The
// stored refresh credential is left untouched.
func (m *SessionManager) ChangePassword(ctx context.Context, userID bson.ObjectID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apierr.New(apierr.KindInvalidArgument, "old and new passwords are required")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierr.New(apierr.KindNotFound, "user not found")
		}
		return fmt.Errorf("look up user for password change: %w", err)
	}

	if !m.passwords.Verify(oldPassword, user.Password) {
		return apierr.New(apierr.KindUnauthorized, "invalid credentials")
	}

	hash, err := m.passwords.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := m.users.SetPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}
	return nil
}

// VerifyAccess validates an access token for the authentication middleware.
func (m *SessionManager) VerifyAccess(token string) (AccessClaims, error) {
	claims, err := m.tokens.VerifyAccess(token)
	if err != nil {
		return AccessClaims{}, apierr.New(apierr.KindUnauthorized, "invalid access token")
	}
	return claims, nil
}

func (m *SessionManager) issue(user models.User) (models.SessionTokens, error) {
	access, accessExp, err := m.tokens.IssueAccess(user)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, refreshExp, err := m.tokens.IssueRefresh(user.ID)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
