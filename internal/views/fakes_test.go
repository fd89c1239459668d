package views

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// The fakes below hold entities in memory and answer the reader interfaces
// with the same ordering guarantees as the Mongo repositories.

type fakeStore struct {
	users         []models.User
	videos        []models.Video
	subscriptions []models.Subscription
	likes         []models.Like
	comments      []models.Comment
	playlists     []models.Playlist
}

func newAggregatorOver(s *fakeStore) *Aggregator {
	return NewAggregator(
		fakeUsers{s}, fakeVideos{s}, fakeSubscriptions{s},
		fakeLikes{s}, fakeComments{s}, fakePlaylists{s},
	)
}

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) FindByID(_ context.Context, id bson.ObjectID) (models.User, error) {
	for _, u := range f.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f fakeUsers) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]models.User, error) {
	wanted := make(map[bson.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.User
	for _, u := range f.s.users {
		if wanted[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range f.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

type fakeVideos struct{ s *fakeStore }

func (f fakeVideos) FindByID(_ context.Context, id bson.ObjectID) (models.Video, error) {
	for _, v := range f.s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Video{}, repositories.ErrNotFound
}

func (f fakeVideos) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]models.Video, error) {
	wanted := make(map[bson.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.Video
	for _, v := range f.s.videos {
		if wanted[v.ID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f fakeVideos) ListByOwner(_ context.Context, owner bson.ObjectID) ([]models.Video, error) {
	var out []models.Video
	for _, v := range f.s.videos {
		if v.Owner == owner {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeSubscriptions struct{ s *fakeStore }

func (f fakeSubscriptions) Exists(_ context.Context, subscriber, channel bson.ObjectID) (bool, error) {
	for _, sub := range f.s.subscriptions {
		if sub.Subscriber == subscriber && sub.Channel == channel {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSubscriptions) CountByChannel(_ context.Context, channel bson.ObjectID) (int64, error) {
	var n int64
	for _, sub := range f.s.subscriptions {
		if sub.Channel == channel {
			n++
		}
	}
	return n, nil
}

func (f fakeSubscriptions) CountBySubscriber(_ context.Context, subscriber bson.ObjectID) (int64, error) {
	var n int64
	for _, sub := range f.s.subscriptions {
		if sub.Subscriber == subscriber {
			n++
		}
	}
	return n, nil
}

type fakeLikes struct{ s *fakeStore }

func (f fakeLikes) ListByTargets(_ context.Context, kind models.LikeTarget, targets []bson.ObjectID) ([]models.Like, error) {
	wanted := make(map[bson.ObjectID]bool, len(targets))
	for _, id := range targets {
		wanted[id] = true
	}
	var out []models.Like
	for _, l := range f.s.likes {
		if l.TargetKind == kind && wanted[l.TargetID] {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeComments struct{ s *fakeStore }

func (f fakeComments) ListByVideo(_ context.Context, video bson.ObjectID, skip, limit int64) ([]models.Comment, error) {
	var all []models.Comment
	for _, c := range f.s.comments {
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

func (f fakeComments) CountByVideo(_ context.Context, video bson.ObjectID) (int64, error) {
	var n int64
	for _, c := range f.s.comments {
		if c.Video == video {
			n++
		}
	}
	return n, nil
}

type fakePlaylists struct{ s *fakeStore }

func (f fakePlaylists) FindByID(_ context.Context, id bson.ObjectID) (models.Playlist, error) {
	for _, p := range f.s.playlists {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Playlist{}, repositories.ErrNotFound
}

func (f fakePlaylists) ListByOwner(_ context.Context, owner bson.ObjectID) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range f.s.playlists {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	return out, nil
}
