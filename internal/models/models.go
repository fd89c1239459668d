package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account on the platform. Password and RefreshToken are
// never serialized into responses.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"fullName" json:"fullName"`
	Avatar       string          `bson:"avatar" json:"avatar"`
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Password     string          `bson:"password" json:"-"`
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Video is an uploaded clip owned by a user.
type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       bson.ObjectID `bson:"owner" json:"owner"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Subscription is the "subscriber follows channel" edge. At most one edge may
// exist per (subscriber, channel) pair.
type Subscription struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber bson.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    bson.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

// LikeTarget discriminates what a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
)

// Like is the (likedBy, target) edge. At most one like may exist per
// (user, target kind, target id).
type Like struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	LikedBy    bson.ObjectID `bson:"likedBy" json:"likedBy"`
	TargetKind LikeTarget    `bson:"targetKind" json:"targetKind"`
	TargetID   bson.ObjectID `bson:"targetId" json:"targetId"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

// Comment is a user remark on a video.
type Comment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string        `bson:"content" json:"content"`
	Video     bson.ObjectID `bson:"video" json:"video"`
	Owner     bson.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Playlist is an ordered collection of video references. Videos holds the
// playback order; duplicates are rejected at the mutation boundary.
type Playlist struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Description string          `bson:"description" json:"description"`
	Owner       bson.ObjectID   `bson:"owner" json:"owner"`
	Videos      []bson.ObjectID `bson:"videos,omitempty" json:"videos"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the redacted projection of a User safe for any response.
type PublicUser struct {
	ID         bson.ObjectID `json:"id"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	FullName   string        `json:"fullName"`
	Avatar     string        `json:"avatar"`
	CoverImage string        `json:"coverImage,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Public returns the redacted view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
