package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
)

// ErrInvalidToken indicates a token that is malformed, expired, or signed with
// the wrong key for its kind.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are carried by access tokens. The denormalized profile fields
// let authenticated requests skip a store round trip.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the signed session credentials. Access and
// refresh tokens are signed with distinct secrets, so a token of one kind can
// never verify as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenIssuer constructs an issuer from the per-kind secrets and TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IssueAccess mints a short-lived access token carrying the user's identity
// claims.
func (i *TokenIssuer) IssueAccess(user models.User) (string, time.Time, error) {
	expiresAt := i.now().Add(i.accessTTL)
	claims := AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefresh mints a long-lived refresh token carrying only the subject.
func (i *TokenIssuer) IssueRefresh(userID bson.ObjectID) (string, time.Time, error) {
	expiresAt := i.now().Add(i.refreshTTL)
	// The jti makes every refresh token unique even when two are minted
	// within the same second, so rotation always replaces the stored slot
	// with a distinct value.
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(i.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *TokenIssuer) VerifyAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.accessSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return AccessClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns the subject user id.
func (i *TokenIssuer) VerifyRefresh(token string) (bson.ObjectID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.refreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return bson.ObjectID{}, ErrInvalidToken
	}

	userID, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidToken
	}
	return userID, nil
}

// WithNowFunc allows tests to override the time source.
func (i *TokenIssuer) WithNowFunc(now func() time.Time) {
	i.now = now
}
