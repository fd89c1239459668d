package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
)

// envelope is the uniform response shape. Every success carries data and
// success=true; every failure carries the message, an errors list, and
// success=false. Stack detail appears only in development mode.
type envelope struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data,omitempty"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
	Success    bool     `json:"success"`
	Stack      string   `json:"stack,omitempty"`
}

// development toggles stack traces in error responses. Set once during route
// registration, before the server accepts traffic.
var development bool

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)
	status := apierr.Status(kind)
	message := apierr.MessageOf(err)

	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", status)
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}

	body := envelope{
		StatusCode: status,
		Message:    message,
		Errors:     []string{message},
		Success:    false,
	}
	if development {
		body.Stack = string(debug.Stack())
	}

	writeJSON(ctx, w, status, body)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, "invalid request body", err)
	}
	return nil
}
