package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/models"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// setSessionCookies delivers both credentials as httpOnly cookies alongside
// the response body. The secure flag comes from configuration so local
// development over plain HTTP still works.
func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, secure bool) {
	http.SetCookie(w, sessionCookie(accessCookieName, tokens.AccessToken, tokens.AccessExpiresAt, secure))
	http.SetCookie(w, sessionCookie(refreshCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt, secure))
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, sessionCookie(accessCookieName, "", expired, secure))
	http.SetCookie(w, sessionCookie(refreshCookieName, "", expired, secure))
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// accessTokenFrom pulls the access token from the cookie or the bearer header.
func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// refreshTokenFrom pulls the refresh token from the cookie, falling back to
// the request body field.
func refreshTokenFrom(r *http.Request, bodyToken string) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(bodyToken)
}
