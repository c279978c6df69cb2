package db

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ListOptions captures the blog listing query parameters after parsing.
type ListOptions struct {
	Page  int
	Limit int

	Query       string
	Tags        []string
	Genre       string
	From        time.Time
	To          time.Time
	MinLikes    int
	MinComments int
	MinRead     int
	MaxRead     int

	// Sort is either an alias (recent, oldest, popular, discussion) or a
	// store-native sort expression like "-updatedAt title".
	Sort string

	// Minimal requests the listing projection with excerpts instead of
	// full content bodies.
	Minimal bool
}

// Normalize applies the paging defaults: page floor 1, limit default 10,
// limit cap 50.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = defaultPageSize
	}
	if o.Limit > maxPageSize {
		o.Limit = maxPageSize
	}
}

// PageMeta is the pagination metadata returned with every listing.
type PageMeta struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPageMeta computes the metadata for a page request. A page past the end
// simply yields HasNextPage=false; it is not an error.
func NewPageMeta(total int64, page, limit int) PageMeta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageMeta{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && total > 0,
	}
}

// buildFilter translates the options into a Mongo filter. The base predicate
// always restricts to published posts. Free-text search uses $text when the
// text index exists and falls back to a case-insensitive substring match on
// title or content otherwise.
func buildFilter(o ListOptions, textSearch bool) bson.M {
	filter := bson.M{"isPublished": true}

	if q := strings.TrimSpace(o.Query); q != "" {
		if textSearch {
			filter["$text"] = bson.M{"$search": q}
		} else {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
			filter["$or"] = bson.A{
				bson.M{"title": re},
				bson.M{"content": re},
			}
		}
	}
	if len(o.Tags) > 0 {
		filter["tags"] = bson.M{"$in": o.Tags}
	}
	if o.Genre != "" {
		filter["genre"] = o.Genre
	}

	created := bson.M{}
	if !o.From.IsZero() {
		created["$gte"] = o.From
	}
	if !o.To.IsZero() {
		created["$lte"] = o.To
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	if o.MinLikes > 0 {
		filter["likesCount"] = bson.M{"$gte": o.MinLikes}
	}
	if o.MinComments > 0 {
		filter["commentsCount"] = bson.M{"$gte": o.MinComments}
	}

	readTime := bson.M{}
	if o.MinRead > 0 {
		readTime["$gte"] = o.MinRead
	}
	if o.MaxRead > 0 {
		readTime["$lte"] = o.MaxRead
	}
	if len(readTime) > 0 {
		filter["estimatedReadTime"] = readTime
	}

	return filter
}

// buildSort resolves the sort aliases. textQuery marks a $text-backed search
// with no caller-specified sort, which defaults to relevance then recency.
// Unrecognized sort strings pass through as store-native expressions.
func buildSort(o ListOptions, textQuery bool) bson.D {
	switch o.Sort {
	case "":
		if textQuery {
			return bson.D{
				{Key: "score", Value: bson.M{"$meta": "textScore"}},
				{Key: "createdAt", Value: -1},
			}
		}
		return bson.D{{Key: "createdAt", Value: -1}}
	case "recent":
		return bson.D{{Key: "createdAt", Value: -1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	case "popular":
		return bson.D{{Key: "likesCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case "discussion":
		return bson.D{{Key: "commentsCount", Value: -1}, {Key: "createdAt", Value: -1}}
	}

	fields := strings.FieldsFunc(o.Sort, func(r rune) bool {
		return r == ' ' || r == ','
	})
	sort := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			sort = append(sort, bson.E{Key: name, Value: -1})
		} else {
			sort = append(sort, bson.E{Key: f, Value: 1})
		}
	}
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return sort
}

// listProjection keeps only the listing-relevant fields. Content stays in
// the projection because the excerpt is synthesized from it; the handler
// drops the body from the response.
func listProjection(textQuery bool) bson.M {
	proj := bson.M{
		"title":             1,
		"slug":              1,
		"content":           1,
		"author":            1,
		"authorUser":        1,
		"genre":             1,
		"tags":              1,
		"coverImage":        1,
		"isPublished":       1,
		"likesCount":        1,
		"commentsCount":     1,
		"estimatedReadTime": 1,
		"createdAt":         1,
		"updatedAt":         1,
	}
	if textQuery {
		proj["score"] = bson.M{"$meta": "textScore"}
	}
	return proj
}

// pickSlug resolves slug collisions by appending an incrementing numeric
// suffix to the base until a free slug is found.
func pickSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
