package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/models"
)

// activeFilter excludes soft-deleted users from every lookup, mirroring the
// account model's active flag semantics.
func activeFilter(extra bson.M) bson.M {
	filter := bson.M{"active": bson.M{"$ne": false}}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

// CreateUser inserts a new account. The email is lowercased before insert;
// a duplicate surfaces as a field-level validation error.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Active = true
	if user.Bookmarks == nil {
		user.Bookmarks = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Validation("email", "email already in use")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := activeFilter(bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, activeFilter(bson.M{"_id": id})).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// UserSummary loads the populated-author projection for a post. A zero or
// unresolvable id yields nil rather than an error: detail reads should not
// fail because an author account went inactive.
func (s *Store) UserSummary(ctx context.Context, id primitive.ObjectID) (*models.UserSummary, error) {
	if id.IsZero() {
		return nil, nil
	}
	var summary models.UserSummary
	err := s.users.FindOne(
		ctx,
		activeFilter(bson.M{"_id": id}),
		options.FindOne().SetProjection(bson.M{"name": 1}),
	).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user summary: %w", err)
	}
	return &summary, nil
}

// ToggleBookmark flips the post id's membership in the user's bookmark set
// and returns the action taken with the new set size. Read-modify-write,
// last write wins.
func (s *Store) ToggleBookmark(ctx context.Context, userID, blogID primitive.ObjectID) (string, int, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", 0, err
	}

	var update bson.M
	action := "added"
	if user.HasBookmark(blogID) {
		update = bson.M{"$pull": bson.M{"bookmarks": blogID}}
		action = "removed"
	} else {
		update = bson.M{"$addToSet": bson.M{"bookmarks": blogID}}
	}

	var updated models.User
	err = s.users.FindOneAndUpdate(
		ctx,
		activeFilter(bson.M{"_id": userID}),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", 0, apperr.NotFound("user not found")
	}
	if err != nil {
		return "", 0, fmt.Errorf("toggle bookmark: %w", err)
	}
	return action, len(updated.Bookmarks), nil
}
