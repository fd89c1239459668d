package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/clipstream/backend/internal/models"
)

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository constructs a user repository over the provided database.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: database.Collection("users")}
}

// Create persists a new user record. Username and email uniqueness is enforced
// by the collection's indexes.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// FindByID fetches a user by identifier.
func (r *MongoUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return user, nil
}

// FindByIDs fetches every user whose identifier appears in ids.
func (r *MongoUserRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("query users by ids: %w", err)
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// FindByUsername fetches a user by their unique username.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by username: %w", err)
	}
	return user, nil
}

// FindByLogin fetches a user matching the value as either username or email.
func (r *MongoUserRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": usernameOrEmail},
		bson.M{"email": usernameOrEmail},
	}}

	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by login: %w", err)
	}
	return user, nil
}

// UpdateAccount modifies the user's display name and email.
func (r *MongoUserRepository) UpdateAccount(ctx context.Context, id bson.ObjectID, fullName, email string) (models.User, error) {
	return r.findAndSet(ctx, id, bson.M{"fullName": fullName, "email": email})
}

// UpdateAvatar replaces the avatar URI.
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id bson.ObjectID, url string) (models.User, error) {
	return r.findAndSet(ctx, id, bson.M{"avatar": url})
}

// UpdateCoverImage replaces the cover image URI.
func (r *MongoUserRepository) UpdateCoverImage(ctx context.Context, id bson.ObjectID, url string) (models.User, error) {
	return r.findAndSet(ctx, id, bson.M{"coverImage": url})
}

// SetPassword overwrites the stored password hash.
func (r *MongoUserRepository) SetPassword(ctx context.Context, id bson.ObjectID, hash string) error {
	_, err := r.findAndSet(ctx, id, bson.M{"password": hash})
	return err
}

// SetRefreshToken overwrites the single stored session credential. Any prior
// value is silently invalidated: this is the single-slot design.
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	_, err := r.findAndSet(ctx, id, bson.M{"refreshToken": token})
	return err
}

// RotateRefreshToken swaps the stored credential for next only when the stored
// value still equals previous. The compare and the overwrite are one
// conditional document update, so two racing rotations cannot both win.
func (r *MongoUserRepository) RotateRefreshToken(ctx context.Context, id bson.ObjectID, previous, next string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": previous},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRefreshToken removes the stored credential. Clearing an already-empty
// slot succeeds, making logout idempotent.
func (r *MongoUserRepository) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$unset": bson.M{"refreshToken": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// AppendWatchHistory prepends the video to the user's watch history, keeping
// the sequence most-recent-first in a single atomic update.
func (r *MongoUserRepository) AppendWatchHistory(ctx context.Context, id, videoID bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"watchHistory": bson.M{"$each": bson.A{videoID}, "$position": 0}}},
	)
	if err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findAndSet(ctx context.Context, id bson.ObjectID, fields bson.M) (models.User, error) {
	fields["updatedAt"] = time.Now().UTC()

	var user models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

var _ UserRepository = (*MongoUserRepository)(nil)
