package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/apierr"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// CommentView is a comment annotated with its like rollup, trimmed owner, and
// the viewer's like flag.
type CommentView struct {
	ID         bson.ObjectID `json:"id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
	LikesCount int64         `json:"likesCount"`
	Owner      Owner         `json:"owner"`
	IsLiked    bool          `json:"isLiked"`
}

// VideoComments returns one page of a video's comments, newest first. The
// target video must exist: comments hang off it, so an unknown video is
// NotFound rather than an empty page.
func (a *Aggregator) VideoComments(ctx context.Context, videoID, viewer bson.ObjectID, params PageParams) (Page[CommentView], error) {
	ctx, span := logging.StartSpan(ctx, "views.VideoComments")
	defer span.End()

	if _, err := a.videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Page[CommentView]{}, apierr.New(apierr.KindNotFound, "video not found")
		}
		return Page[CommentView]{}, fmt.Errorf("resolve video: %w", err)
	}

	total, err := a.comments.CountByVideo(ctx, videoID)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("count comments: %w", err)
	}

	comments, err := a.comments.ListByVideo(ctx, videoID, params.Skip(), int64(params.Limit))
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("list comments: %w", err)
	}

	commentIDs := make([]bson.ObjectID, 0, len(comments))
	ownerIDs := make([]bson.ObjectID, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		ownerIDs = append(ownerIDs, c.Owner)
	}

	likes, err := a.likes.ListByTargets(ctx, models.LikeTargetComment, commentIDs)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("roll up comment likes: %w", err)
	}

	likeCounts := make(map[bson.ObjectID]int64, len(comments))
	likedByViewer := make(map[bson.ObjectID]bool)
	for _, l := range likes {
		likeCounts[l.TargetID]++
		if !viewer.IsZero() && l.LikedBy == viewer {
			likedByViewer[l.TargetID] = true
		}
	}

	owners, err := a.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("expand comment owners: %w", err)
	}
	ownersByID := make(map[bson.ObjectID]models.User, len(owners))
	for _, u := range owners {
		ownersByID[u.ID] = u
	}

	items := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		items = append(items, CommentView{
			ID:         c.ID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
			LikesCount: likeCounts[c.ID],
			Owner:      ownerOf(ownersByID[c.Owner]),
			IsLiked:    likedByViewer[c.ID],
		})
	}

	return NewPage(items, total, params), nil
}
