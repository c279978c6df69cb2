package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const PasswordMinLen = 8

// User is an account document. Password carries the bcrypt hash and is never
// serialized; Active is a soft-delete flag and inactive users are excluded
// from every lookup.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Role      string               `bson:"role" json:"role"`
	Password  string               `bson:"password" json:"-"`
	Bookmarks []primitive.ObjectID `bson:"bookmarks" json:"bookmarks,omitempty"`
	Active    bool                 `bson:"active" json:"-"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasBookmark reports whether the post id is in the user's bookmark set.
func (u *User) HasBookmark(blogID primitive.ObjectID) bool {
	for _, id := range u.Bookmarks {
		if id == blogID {
			return true
		}
	}
	return false
}

// UserSummary is the populated-author projection embedded in detail
// responses.
type UserSummary struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}
