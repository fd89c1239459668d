package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

func TestPublishVideoFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "maria", "password123")
	tokens := env.loginTokens(t, "maria", "password123")

	body, contentType := multipartBody(t,
		map[string]string{
			"title":       "first clip",
			"description": "a test upload",
			"duration":    "12.5",
		},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("publish: expected %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	data, _ := decodeEnvelope(t, rec).Data.(map[string]any)
	videoID, _ := data["id"].(string)
	if videoID == "" {
		t.Fatalf("expected the created video id, got %v", data)
	}

	id, err := bson.ObjectIDFromHex(videoID)
	if err != nil {
		t.Fatalf("parse video id: %v", err)
	}
	stored, err := env.store.FindVideoByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected the video to be stored: %v", err)
	}
	if !strings.HasPrefix(stored.VideoFile, "https://media.test/") ||
		!strings.HasPrefix(stored.Thumbnail, "https://media.test/") {
		t.Fatalf("expected media store urls, got %+v", stored)
	}
	if stored.Duration != 12.5 || stored.Title != "first clip" {
		t.Fatalf("unexpected stored video: %+v", stored)
	}

	// The owner edits, then removes the video.
	patch, _ := json.Marshal(map[string]string{"title": "renamed", "description": "still a test"})
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID, bytes.NewReader(patch))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if stored, _ = env.store.FindVideoByID(context.Background(), id); stored.Title != "renamed" {
		t.Fatalf("expected the title to change, got %+v", stored)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+videoID, nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, err := env.store.FindVideoByID(context.Background(), id); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected the video to be gone, got %v", err)
	}
}

func TestPublishRequiresVideoFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "maria", "password123")
	tokens := env.loginTokens(t, "maria", "password123")

	body, contentType := multipartBody(t,
		map[string]string{"title": "no file"},
		map[string]string{"thumbnail": "thumb.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPublishCleansUpUploadsOnFailedThumbnail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "maria", "password123")
	tokens := env.loginTokens(t, "maria", "password123")

	// The second upload (the thumbnail) is rejected; the already uploaded
	// video file must be deleted again.
	env.media.failAfter = 1

	body, contentType := multipartBody(t,
		map[string]string{"title": "doomed"},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected %d got %d: %s", http.StatusBadGateway, rec.Code, rec.Body.String())
	}
	if len(env.media.deleted) != 1 {
		t.Fatalf("expected 1 compensating delete, got %v", env.media.deleted)
	}
}

func TestVideoOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "maria", "password123")
	env.seedUser(t, "intruder", "password123")
	video := env.store.addVideo(models.Video{Owner: owner.ID, Title: "mine", CreatedAt: time.Now()})

	tokens := env.loginTokens(t, "intruder", "password123")

	cases := []struct {
		name, method string
		body         []byte
	}{
		{"update", http.MethodPatch, []byte(`{"title":"stolen"}`)},
		{"delete", http.MethodDelete, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/videos/"+video.ID.Hex(), bytes.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected %d got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
			}
		})
	}

	stored, err := env.store.FindVideoByID(context.Background(), video.ID)
	if err != nil || stored.Title != "mine" {
		t.Fatalf("expected the video untouched, got %+v err=%v", stored, err)
	}
}
