package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/storage"
	"github.com/clipstream/backend/internal/views"
)

// memStore is an in-memory stand-in for every repository, with the same
// sentinel errors and ordering guarantees as the Mongo implementations.
type memStore struct {
	mu        sync.Mutex
	users     map[bson.ObjectID]models.User
	videos    map[bson.ObjectID]models.Video
	subs      []models.Subscription
	likes     []models.Like
	comments  map[bson.ObjectID]models.Comment
	playlists map[bson.ObjectID]models.Playlist
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[bson.ObjectID]models.User),
		videos:    make(map[bson.ObjectID]models.Video),
		comments:  make(map[bson.ObjectID]models.Comment),
		playlists: make(map[bson.ObjectID]models.Playlist),
	}
}

// --- users ---

func (s *memStore) Create(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.User{}, repositories.ErrConflict
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memStore) FindByID(_ context.Context, id bson.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *memStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memStore) FindByLogin(_ context.Context, usernameOrEmail string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == usernameOrEmail || u.Email == usernameOrEmail {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memStore) UpdateAccount(_ context.Context, id bson.ObjectID, fullName, email string) (models.User, error) {
	return s.mutateUser(id, func(u *models.User) { u.FullName = fullName; u.Email = email })
}

func (s *memStore) UpdateAvatar(_ context.Context, id bson.ObjectID, url string) (models.User, error) {
	return s.mutateUser(id, func(u *models.User) { u.Avatar = url })
}

func (s *memStore) UpdateCoverImage(_ context.Context, id bson.ObjectID, url string) (models.User, error) {
	return s.mutateUser(id, func(u *models.User) { u.CoverImage = url })
}

func (s *memStore) SetPassword(_ context.Context, id bson.ObjectID, hash string) error {
	_, err := s.mutateUser(id, func(u *models.User) { u.Password = hash })
	return err
}

func (s *memStore) SetRefreshToken(_ context.Context, id bson.ObjectID, token string) error {
	_, err := s.mutateUser(id, func(u *models.User) { u.RefreshToken = token })
	return err
}

func (s *memStore) RotateRefreshToken(_ context.Context, id bson.ObjectID, previous, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.RefreshToken != previous {
		return repositories.ErrNotFound
	}
	user.RefreshToken = next
	s.users[id] = user
	return nil
}

func (s *memStore) ClearRefreshToken(_ context.Context, id bson.ObjectID) error {
	// Clearing an unknown or already-empty slot is a no-op, like the $unset.
	_, _ = s.mutateUser(id, func(u *models.User) { u.RefreshToken = "" })
	return nil
}

func (s *memStore) AppendWatchHistory(_ context.Context, id, videoID bson.ObjectID) error {
	_, err := s.mutateUser(id, func(u *models.User) {
		u.WatchHistory = append([]bson.ObjectID{videoID}, u.WatchHistory...)
	})
	return err
}

func (s *memStore) mutateUser(id bson.ObjectID, apply func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	apply(&user)
	s.users[id] = user
	return user, nil
}

// --- videos ---

func (s *memStore) addVideo(video models.Video) models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	if video.ID.IsZero() {
		video.ID = bson.NewObjectID()
	}
	s.videos[video.ID] = video
	return video
}

func (s *memStore) CreateVideo(_ context.Context, video models.Video) (models.Video, error) {
	return s.addVideo(video), nil
}

func (s *memStore) FindVideoByID(_ context.Context, id bson.ObjectID) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *memStore) FindVideosByIDs(_ context.Context, ids []bson.ObjectID) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, id := range ids {
		if v, ok := s.videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) ListByOwner(_ context.Context, owner bson.ObjectID) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, v := range s.videos {
		if v.Owner == owner {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) IncrementViews(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *memStore) UpdateVideo(_ context.Context, id bson.ObjectID, title, description string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	s.videos[id] = video
	return video, nil
}

func (s *memStore) DeleteVideo(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

// --- subscriptions ---

func (s *memStore) CreateSubscription(_ context.Context, subscriber, channel bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.Subscriber == subscriber && sub.Channel == channel {
			return repositories.ErrConflict
		}
	}
	s.subs = append(s.subs, models.Subscription{ID: bson.NewObjectID(), Subscriber: subscriber, Channel: channel})
	return nil
}

func (s *memStore) DeleteSubscription(_ context.Context, subscriber, channel bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.Subscriber == subscriber && sub.Channel == channel {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *memStore) SubscriptionExists(_ context.Context, subscriber, channel bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.Subscriber == subscriber && sub.Channel == channel {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountByChannel(_ context.Context, channel bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sub := range s.subs {
		if sub.Channel == channel {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountBySubscriber(_ context.Context, subscriber bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sub := range s.subs {
		if sub.Subscriber == subscriber {
			n++
		}
	}
	return n, nil
}

// --- likes ---

func (s *memStore) CreateLike(_ context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.LikedBy == likedBy && l.TargetKind == kind && l.TargetID == target {
			return repositories.ErrConflict
		}
	}
	s.likes = append(s.likes, models.Like{ID: bson.NewObjectID(), LikedBy: likedBy, TargetKind: kind, TargetID: target})
	return nil
}

func (s *memStore) DeleteLike(_ context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.likes {
		if l.LikedBy == likedBy && l.TargetKind == kind && l.TargetID == target {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *memStore) LikeExists(_ context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.LikedBy == likedBy && l.TargetKind == kind && l.TargetID == target {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountByTarget(_ context.Context, kind models.LikeTarget, target bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.likes {
		if l.TargetKind == kind && l.TargetID == target {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListByTargets(_ context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[bson.ObjectID]bool, len(targets))
	for _, id := range targets {
		wanted[id] = true
	}
	var out []models.Like
	for _, l := range s.likes {
		if l.TargetKind == kind && wanted[l.TargetID] {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- comments ---

func (s *memStore) CreateComment(_ context.Context, comment models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = bson.NewObjectID()
	}
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *memStore) FindCommentByID(_ context.Context, id bson.ObjectID) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *memStore) ListByVideo(_ context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Comment
	for _, c := range s.comments {
		if c.Video == video {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if skip >= int64(len(all)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (s *memStore) CountByVideo(_ context.Context, video bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.comments {
		if c.Video == video {
			n++
		}
	}
	return n, nil
}

func (s *memStore) UpdateContent(_ context.Context, id bson.ObjectID, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *memStore) DeleteComment(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// --- playlists ---

func (s *memStore) CreatePlaylist(_ context.Context, playlist models.Playlist) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if playlist.ID.IsZero() {
		playlist.ID = bson.NewObjectID()
	}
	s.playlists[playlist.ID] = playlist
	return playlist, nil
}

func (s *memStore) FindPlaylistByID(_ context.Context, id bson.ObjectID) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *memStore) ListPlaylistsByOwner(_ context.Context, owner bson.ObjectID) ([]models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Playlist
	for _, p := range s.playlists {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) UpdatePlaylist(_ context.Context, id bson.ObjectID, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *memStore) DeletePlaylist(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *memStore) AddVideo(_ context.Context, id, videoID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range playlist.Videos {
		if existing == videoID {
			return repositories.ErrConflict
		}
	}
	playlist.Videos = append(playlist.Videos, videoID)
	s.playlists[id] = playlist
	return nil
}

func (s *memStore) RemoveVideo(_ context.Context, id, videoID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for i, existing := range playlist.Videos {
		if existing == videoID {
			playlist.Videos = append(playlist.Videos[:i], playlist.Videos[i+1:]...)
			s.playlists[id] = playlist
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- fake media store ---

type fakeMedia struct {
	mu      sync.Mutex
	uploads int
	deleted []string
	// failAfter rejects every upload once that many have succeeded.
	failAfter int
}

func (m *fakeMedia) Upload(_ context.Context, filename string, r io.Reader) (storage.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && m.uploads >= m.failAfter {
		return storage.Asset{}, fmt.Errorf("upload rejected")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return storage.Asset{}, err
	}
	m.uploads++
	key := fmt.Sprintf("asset-%d-%s", m.uploads, filename)
	return storage.Asset{URL: "https://media.test/" + key, PublicID: key}, nil
}

func (m *fakeMedia) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

// The store views below give each handler interface its exact method set.

type videoStoreView struct{ s *memStore }

func (v videoStoreView) Create(ctx context.Context, video models.Video) (models.Video, error) {
	return v.s.CreateVideo(ctx, video)
}

func (v videoStoreView) Update(ctx context.Context, id bson.ObjectID, title, description string) (models.Video, error) {
	return v.s.UpdateVideo(ctx, id, title, description)
}

func (v videoStoreView) Delete(ctx context.Context, id bson.ObjectID) error {
	return v.s.DeleteVideo(ctx, id)
}

func (v videoStoreView) FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error) {
	return v.s.FindVideoByID(ctx, id)
}

func (v videoStoreView) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Video, error) {
	return v.s.FindVideosByIDs(ctx, ids)
}

func (v videoStoreView) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Video, error) {
	return v.s.ListByOwner(ctx, owner)
}

func (v videoStoreView) IncrementViews(ctx context.Context, id bson.ObjectID) error {
	return v.s.IncrementViews(ctx, id)
}

type subscriptionStoreView struct{ s *memStore }

func (v subscriptionStoreView) Create(ctx context.Context, subscriber, channel bson.ObjectID) error {
	return v.s.CreateSubscription(ctx, subscriber, channel)
}

func (v subscriptionStoreView) Delete(ctx context.Context, subscriber, channel bson.ObjectID) error {
	return v.s.DeleteSubscription(ctx, subscriber, channel)
}

func (v subscriptionStoreView) Exists(ctx context.Context, subscriber, channel bson.ObjectID) (bool, error) {
	return v.s.SubscriptionExists(ctx, subscriber, channel)
}

func (v subscriptionStoreView) CountByChannel(ctx context.Context, channel bson.ObjectID) (int64, error) {
	return v.s.CountByChannel(ctx, channel)
}

func (v subscriptionStoreView) CountBySubscriber(ctx context.Context, subscriber bson.ObjectID) (int64, error) {
	return v.s.CountBySubscriber(ctx, subscriber)
}

type likeStoreView struct{ s *memStore }

func (v likeStoreView) Create(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	return v.s.CreateLike(ctx, likedBy, kind, target)
}

func (v likeStoreView) Delete(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) error {
	return v.s.DeleteLike(ctx, likedBy, kind, target)
}

func (v likeStoreView) Exists(ctx context.Context, likedBy bson.ObjectID, kind models.LikeTarget, target bson.ObjectID) (bool, error) {
	return v.s.LikeExists(ctx, likedBy, kind, target)
}

func (v likeStoreView) CountByTarget(ctx context.Context, kind models.LikeTarget, target bson.ObjectID) (int64, error) {
	return v.s.CountByTarget(ctx, kind, target)
}

func (v likeStoreView) ListByTargets(ctx context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error) {
	return v.s.ListByTargets(ctx, kind, targets)
}

type commentStoreView struct{ s *memStore }

func (v commentStoreView) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	return v.s.CreateComment(ctx, comment)
}

func (v commentStoreView) FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error) {
	return v.s.FindCommentByID(ctx, id)
}

func (v commentStoreView) ListByVideo(ctx context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error) {
	return v.s.ListByVideo(ctx, video, skip, limit)
}

func (v commentStoreView) CountByVideo(ctx context.Context, video bson.ObjectID) (int64, error) {
	return v.s.CountByVideo(ctx, video)
}

func (v commentStoreView) UpdateContent(ctx context.Context, id bson.ObjectID, content string) (models.Comment, error) {
	return v.s.UpdateContent(ctx, id, content)
}

func (v commentStoreView) Delete(ctx context.Context, id bson.ObjectID) error {
	return v.s.DeleteComment(ctx, id)
}

type playlistStoreView struct{ s *memStore }

func (v playlistStoreView) Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	return v.s.CreatePlaylist(ctx, playlist)
}

func (v playlistStoreView) FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error) {
	return v.s.FindPlaylistByID(ctx, id)
}

func (v playlistStoreView) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]models.Playlist, error) {
	return v.s.ListPlaylistsByOwner(ctx, owner)
}

func (v playlistStoreView) Update(ctx context.Context, id bson.ObjectID, name, description string) (models.Playlist, error) {
	return v.s.UpdatePlaylist(ctx, id, name, description)
}

func (v playlistStoreView) Delete(ctx context.Context, id bson.ObjectID) error {
	return v.s.DeletePlaylist(ctx, id)
}

func (v playlistStoreView) AddVideo(ctx context.Context, id, videoID bson.ObjectID) error {
	return v.s.AddVideo(ctx, id, videoID)
}

func (v playlistStoreView) RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) error {
	return v.s.RemoveVideo(ctx, id, videoID)
}

// testEnv assembles the full route table over the in-memory store.
type testEnv struct {
	mux      *http.ServeMux
	store    *memStore
	media    *fakeMedia
	sessions *auth.SessionManager
	hasher   auth.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	sessions := auth.NewSessionManager(store, issuer, hasher)

	videosView := videoStoreView{store}
	subsView := subscriptionStoreView{store}
	likesView := likeStoreView{store}
	commentsView := commentStoreView{store}
	playlistsView := playlistStoreView{store}

	aggregator := views.NewAggregator(store, videosView, subsView, likesView, commentsView, playlistsView)
	stats := views.NewCachingStats(aggregator, time.Minute)
	media := &fakeMedia{}

	deps := Dependencies{
		Auth:      NewAuthHandler(store, sessions, hasher, media, false),
		Channels:  NewChannelHandler(aggregator, stats, store, subsView),
		Videos:    NewVideoHandler(videosView, media),
		Comments:  NewCommentHandler(aggregator, commentsView, videosView),
		Playlists: NewPlaylistHandler(aggregator, playlistsView, videosView),
		Likes:     NewLikeHandler(likesView, videosView, commentsView),
		History:   NewHistoryHandler(aggregator, store, videosView),

		Authenticator: NewAuthenticator(sessions, store),
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)

	return &testEnv{mux: mux, store: store, media: media, sessions: sessions, hasher: hasher}
}

// seedUser inserts a user directly into the store with a usable password.
func (e *testEnv) seedUser(t *testing.T, username, password string) models.User {
	t.Helper()

	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user, err := e.store.Create(context.Background(), models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
		Avatar:   "https://media.test/" + username + ".png",
		Password: hash,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// loginTokens runs a login through the session manager and returns the pair.
func (e *testEnv) loginTokens(t *testing.T, username, password string) models.SessionTokens {
	t.Helper()

	_, tokens, err := e.sessions.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return tokens
}
