package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Title and content limits, matching the published validation rules.
const (
	TitleMinLen   = 3
	TitleMaxLen   = 120
	ContentMinLen = 50
	CommentMaxLen = 2000
)

// Comment is an embedded comment on a blog post. AuthorName is captured at
// write time as a fallback display name for callers without a resolvable
// identity.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Author     primitive.ObjectID `bson:"author,omitempty" json:"author,omitempty"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Blog is a blog post document. Likes holds the identities that liked the
// post and is never serialized raw; clients only see LikesCount.
type Blog struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title             string               `bson:"title" json:"title"`
	Slug              string               `bson:"slug" json:"slug"`
	Content           string               `bson:"content,omitempty" json:"content,omitempty"`
	Author            string               `bson:"author" json:"author"`
	AuthorUser        primitive.ObjectID   `bson:"authorUser,omitempty" json:"authorUser,omitempty"`
	Genre             string               `bson:"genre,omitempty" json:"genre,omitempty"`
	Tags              []string             `bson:"tags" json:"tags"`
	CoverImage        string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	IsPublished       bool                 `bson:"isPublished" json:"isPublished"`
	Likes             []primitive.ObjectID `bson:"likes" json:"-"`
	LikesCount        int                  `bson:"likesCount" json:"likesCount"`
	Comments          []Comment            `bson:"comments" json:"comments,omitempty"`
	CommentsCount     int                  `bson:"commentsCount" json:"commentsCount"`
	EstimatedReadTime int                  `bson:"estimatedReadTime" json:"estimatedReadTime"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// LikedBy reports whether the given identity is present in the like set.
func (b *Blog) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentByID finds an embedded comment, or nil.
func (b *Blog) CommentByID(commentID primitive.ObjectID) *Comment {
	for i := range b.Comments {
		if b.Comments[i].ID == commentID {
			return &b.Comments[i]
		}
	}
	return nil
}

// BlogListItem is the minimal-mode listing projection: no content body, just
// a short excerpt.
type BlogListItem struct {
	ID                primitive.ObjectID `json:"id"`
	Title             string             `json:"title"`
	Slug              string             `json:"slug"`
	Excerpt           string             `json:"excerpt"`
	Author            string             `json:"author"`
	AuthorUser        primitive.ObjectID `json:"authorUser,omitempty"`
	Genre             string             `json:"genre,omitempty"`
	Tags              []string           `json:"tags"`
	CoverImage        string             `json:"coverImage,omitempty"`
	LikesCount        int                `json:"likesCount"`
	CommentsCount     int                `json:"commentsCount"`
	EstimatedReadTime int                `json:"estimatedReadTime"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ListItem projects the post into its minimal listing form.
func (b *Blog) ListItem() BlogListItem {
	return BlogListItem{
		ID:                b.ID,
		Title:             b.Title,
		Slug:              b.Slug,
		Excerpt:           Excerpt(b.Content, ExcerptMaxLen),
		Author:            b.Author,
		AuthorUser:        b.AuthorUser,
		Genre:             b.Genre,
		Tags:              b.Tags,
		CoverImage:        b.CoverImage,
		LikesCount:        b.LikesCount,
		CommentsCount:     b.CommentsCount,
		EstimatedReadTime: b.EstimatedReadTime,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
