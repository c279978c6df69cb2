package client

import "time"

// Blog is a post as the API serializes it. Listing responses carry Excerpt
// instead of Content.
type Blog struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	Content           string    `json:"content,omitempty"`
	Excerpt           string    `json:"excerpt,omitempty"`
	Author            string    `json:"author"`
	Genre             string    `json:"genre,omitempty"`
	Tags              []string  `json:"tags"`
	CoverImage        string    `json:"coverImage,omitempty"`
	IsPublished       bool      `json:"isPublished"`
	LikesCount        int       `json:"likesCount"`
	CommentsCount     int       `json:"commentsCount"`
	EstimatedReadTime int       `json:"estimatedReadTime"`
	Comments          []Comment `json:"comments,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author,omitempty"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bookmarks []string  `json:"bookmarks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PageMeta is the pagination metadata attached to listings.
type PageMeta struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// BlogPage is one page of a listing plus its metadata.
type BlogPage struct {
	Blogs []Blog
	Meta  PageMeta
}
