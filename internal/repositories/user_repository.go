package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/clipstream/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	UpdateAccount(ctx context.Context, id bson.ObjectID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id bson.ObjectID, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id bson.ObjectID, url string) (models.User, error)
	SetPassword(ctx context.Context, id bson.ObjectID, hash string) error
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, previous, next string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	AppendWatchHistory(ctx context.Context, id, videoID bson.ObjectID) error
}
