package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/models"
)

// BlogPatch carries the allow-listed fields an update may change. Nil means
// "leave unchanged". Ownership fields are deliberately absent.
type BlogPatch struct {
	Title       *string
	Content     *string
	Tags        *[]string
	CoverImage  *string
	IsPublished *bool
	Genre       *string
}

// ListBlogs returns the matching page of published posts plus pagination
// metadata. A page past the available range returns an empty slice with
// accurate metadata.
func (s *Store) ListBlogs(ctx context.Context, opts ListOptions) ([]models.Blog, PageMeta, error) {
	opts.Normalize()

	textQuery := opts.Query != "" && s.textSearch
	filter := buildFilter(opts, s.textSearch)

	total, err := s.blogs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("count blogs: %w", err)
	}
	meta := NewPageMeta(total, opts.Page, opts.Limit)

	findOpts := options.Find().
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit)).
		SetSort(buildSort(opts, textQuery && opts.Sort == ""))
	if opts.Minimal {
		findOpts.SetProjection(listProjection(textQuery))
	} else if textQuery {
		findOpts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := s.blogs.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("list blogs: %w", err)
	}
	defer cursor.Close(ctx)

	blogs := make([]models.Blog, 0, opts.Limit)
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, PageMeta{}, fmt.Errorf("decode blogs: %w", err)
	}
	return blogs, meta, nil
}

// GetBlogByID loads a post by id regardless of publication state; mutation
// paths use it so owners can still reach their drafts.
func (s *Store) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var blog models.Blog
	err := s.blogs.FindOne(ctx, bson.M{"_id": id}).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("blog not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &blog, nil
}

// GetPublishedBlogByID is the public read variant: unpublished posts resolve
// to not-found.
func (s *Store) GetPublishedBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var blog models.Blog
	err := s.blogs.FindOne(ctx, bson.M{"_id": id, "isPublished": true}).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("blog not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &blog, nil
}

func (s *Store) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := s.blogs.FindOne(ctx, bson.M{"slug": slug, "isPublished": true}).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("blog not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get blog by slug: %w", err)
	}
	return &blog, nil
}

// BlogExistsPublished reports whether the id resolves to a published post.
func (s *Store) BlogExistsPublished(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.blogs.CountDocuments(ctx, bson.M{"_id": id, "isPublished": true}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("blog exists: %w", err)
	}
	return count > 0, nil
}

// CreateBlog derives the slug and read time, stamps timestamps, and inserts
// the document. The caller has already forced the ownership fields.
func (s *Store) CreateBlog(ctx context.Context, blog *models.Blog) error {
	slug, err := s.uniqueSlug(ctx, models.SlugBase(blog.Title), primitive.NilObjectID)
	if err != nil {
		return err
	}
	blog.Slug = slug
	blog.EstimatedReadTime = models.ReadTime(blog.Content)
	blog.CreatedAt = time.Now().UTC()
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if blog.Likes == nil {
		blog.Likes = []primitive.ObjectID{}
	}
	if blog.Comments == nil {
		blog.Comments = []models.Comment{}
	}

	res, err := s.blogs.InsertOne(ctx, blog)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		blog.ID = id
	}
	return nil
}

// UpdateBlog applies an allow-listed patch. A title change re-derives the
// slug; a content change re-derives the read time. UpdatedAt is bumped on
// every save.
func (s *Store) UpdateBlog(ctx context.Context, id primitive.ObjectID, patch BlogPatch) (*models.Blog, error) {
	current, err := s.GetBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil && *patch.Title != current.Title {
		set["title"] = *patch.Title
		slug, err := s.uniqueSlug(ctx, models.SlugBase(*patch.Title), id)
		if err != nil {
			return nil, err
		}
		set["slug"] = slug
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
		set["estimatedReadTime"] = models.ReadTime(*patch.Content)
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.CoverImage != nil {
		set["coverImage"] = *patch.CoverImage
	}
	if patch.IsPublished != nil {
		set["isPublished"] = *patch.IsPublished
	}
	if patch.Genre != nil {
		set["genre"] = *patch.Genre
	}

	var updated models.Blog
	err = s.blogs.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("blog not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return &updated, nil
}

func (s *Store) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.blogs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("blog not found")
	}
	return nil
}

// ToggleLike flips the caller's membership in the like set and returns the
// action taken with the new count. Read-modify-write, last write wins.
func (s *Store) ToggleLike(ctx context.Context, blogID, userID primitive.ObjectID) (string, int, error) {
	blog, err := s.GetBlogByID(ctx, blogID)
	if err != nil {
		return "", 0, err
	}

	var update bson.M
	action := "liked"
	if blog.LikedBy(userID) {
		update = bson.M{"$pull": bson.M{"likes": userID}}
		action = "unliked"
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}

	var updated models.Blog
	err = s.blogs.FindOneAndUpdate(
		ctx,
		bson.M{"_id": blogID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", 0, apperr.NotFound("blog not found")
	}
	if err != nil {
		return "", 0, fmt.Errorf("toggle like: %w", err)
	}

	count := len(updated.Likes)
	if _, err := s.blogs.UpdateByID(ctx, blogID, bson.M{"$set": bson.M{"likesCount": count}}); err != nil {
		return "", 0, fmt.Errorf("update like count: %w", err)
	}
	return action, count, nil
}

// AddComment appends a comment and returns it with the new comment count.
func (s *Store) AddComment(ctx context.Context, blogID primitive.ObjectID, comment models.Comment) (models.Comment, int, error) {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	var updated models.Blog
	err := s.blogs.FindOneAndUpdate(
		ctx,
		bson.M{"_id": blogID},
		bson.M{"$push": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Comment{}, 0, apperr.NotFound("blog not found")
	}
	if err != nil {
		return models.Comment{}, 0, fmt.Errorf("add comment: %w", err)
	}

	count := len(updated.Comments)
	if _, err := s.blogs.UpdateByID(ctx, blogID, bson.M{"$set": bson.M{"commentsCount": count}}); err != nil {
		return models.Comment{}, 0, fmt.Errorf("update comment count: %w", err)
	}
	return comment, count, nil
}

// RemoveComment pulls a comment by id and returns the new count. Permission
// checks happen in the handler before this is called.
func (s *Store) RemoveComment(ctx context.Context, blogID, commentID primitive.ObjectID) (int, error) {
	var updated models.Blog
	err := s.blogs.FindOneAndUpdate(
		ctx,
		bson.M{"_id": blogID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, apperr.NotFound("blog not found")
	}
	if err != nil {
		return 0, fmt.Errorf("remove comment: %w", err)
	}

	count := len(updated.Comments)
	if _, err := s.blogs.UpdateByID(ctx, blogID, bson.M{"$set": bson.M{"commentsCount": count}}); err != nil {
		return 0, fmt.Errorf("update comment count: %w", err)
	}
	return count, nil
}

// BlogsByIDs loads the published posts among ids in listing projection, for
// bookmark listings.
func (s *Store) BlogsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Blog, error) {
	if len(ids) == 0 {
		return []models.Blog{}, nil
	}
	cursor, err := s.blogs.Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}, "isPublished": true},
		options.Find().SetProjection(listProjection(false)).SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("blogs by ids: %w", err)
	}
	defer cursor.Close(ctx)

	blogs := make([]models.Blog, 0, len(ids))
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, fmt.Errorf("decode blogs: %w", err)
	}
	return blogs, nil
}

// uniqueSlug finds the first free slug for base, skipping excludeID so a
// retitled post can keep colliding with itself.
func (s *Store) uniqueSlug(ctx context.Context, base string, excludeID primitive.ObjectID) (string, error) {
	filter := bson.M{
		"slug": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(base) + "(-\\d+)?$"},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	cursor, err := s.blogs.Find(ctx, filter, options.Find().SetProjection(bson.M{"slug": 1}))
	if err != nil {
		return "", fmt.Errorf("find slugs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Slug string `bson:"slug"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return "", fmt.Errorf("decode slugs: %w", err)
	}
	existing := make(map[string]bool, len(docs))
	for _, d := range docs {
		existing[d.Slug] = true
	}
	return pickSlug(base, func(candidate string) bool {
		return existing[candidate]
	}), nil
}
