package views

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/models"
)

func TestVideoComments(t *testing.T) {
	author := models.User{ID: bson.NewObjectID(), Username: "maria", FullName: "Maria Silva", Avatar: "a.png"}
	viewer := models.User{ID: bson.NewObjectID(), Username: "viewer"}
	video := models.Video{ID: bson.NewObjectID(), Owner: author.ID}
	base := time.Now()

	var comments []models.Comment
	for i := 0; i < 3; i++ {
		comments = append(comments, models.Comment{
			ID:        bson.NewObjectID(),
			Content:   "comment",
			Video:     video.ID,
			Owner:     author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	store := &fakeStore{
		users:    []models.User{author, viewer},
		videos:   []models.Video{video},
		comments: comments,
		likes: []models.Like{
			{LikedBy: viewer.ID, TargetKind: models.LikeTargetComment, TargetID: comments[2].ID},
			{LikedBy: author.ID, TargetKind: models.LikeTargetComment, TargetID: comments[2].ID},
		},
	}
	agg := newAggregatorOver(store)

	page, err := agg.VideoComments(context.Background(), video.ID, viewer.ID, PageParams{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("video comments: %v", err)
	}

	if page.TotalCount != 3 || !page.HasNext {
		t.Fatalf("unexpected page envelope: %+v", page)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}

	// Newest first, and the newest comment carries both likes plus the
	// viewer's flag.
	newest := page.Items[0]
	if newest.ID != comments[2].ID {
		t.Fatalf("expected the newest comment first, got %v", newest.ID)
	}
	if newest.LikesCount != 2 || !newest.IsLiked {
		t.Fatalf("unexpected like rollup: %+v", newest)
	}
	if newest.Owner.Username != "maria" || newest.Owner.FullName != "Maria Silva" {
		t.Fatalf("unexpected owner expansion: %+v", newest.Owner)
	}

	if page.Items[1].IsLiked {
		t.Fatal("expected the older comment to be unliked by the viewer")
	}
}

func TestVideoCommentsAnonymousViewer(t *testing.T) {
	author := models.User{ID: bson.NewObjectID(), Username: "maria"}
	video := models.Video{ID: bson.NewObjectID(), Owner: author.ID}
	comment := models.Comment{ID: bson.NewObjectID(), Video: video.ID, Owner: author.ID}

	store := &fakeStore{
		users:    []models.User{author},
		videos:   []models.Video{video},
		comments: []models.Comment{comment},
		likes: []models.Like{
			{LikedBy: author.ID, TargetKind: models.LikeTargetComment, TargetID: comment.ID},
		},
	}
	agg := newAggregatorOver(store)

	page, err := agg.VideoComments(context.Background(), video.ID, bson.ObjectID{}, PageParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("video comments: %v", err)
	}
	if page.Items[0].LikesCount != 1 || page.Items[0].IsLiked {
		t.Fatalf("expected likesCount=1 isLiked=false for anonymous viewer, got %+v", page.Items[0])
	}
}

func TestVideoCommentsUnknownVideo(t *testing.T) {
	agg := newAggregatorOver(&fakeStore{})

	if _, err := agg.VideoComments(context.Background(), bson.NewObjectID(), bson.ObjectID{}, PageParams{Page: 1, Limit: 10}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("expected NotFound for an unknown video, got %v", err)
	}
}
