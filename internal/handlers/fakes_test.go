package handlers_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/db"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/models"
)

// fakeBlogStore is an in-memory stand-in for the Mongo store, mirroring its
// derivation rules (slug, read time, counts) so handler flows behave as in
// production.
type fakeBlogStore struct {
	mu    sync.Mutex
	blogs map[primitive.ObjectID]*models.Blog
	users map[primitive.ObjectID]*models.User
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{
		blogs: make(map[primitive.ObjectID]*models.Blog),
		users: make(map[primitive.ObjectID]*models.User),
	}
}

func (f *fakeBlogStore) addUser(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeBlogStore) seed(blog *models.Blog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if blog.ID.IsZero() {
		blog.ID = primitive.NewObjectID()
	}
	if blog.Slug == "" {
		blog.Slug = models.SlugBase(blog.Title)
	}
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now().UTC()
	}
	blog.EstimatedReadTime = models.ReadTime(blog.Content)
	f.blogs[blog.ID] = blog
}

func (f *fakeBlogStore) get(id primitive.ObjectID) *models.Blog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blogs[id]
}

func (f *fakeBlogStore) slugTaken(slug string) bool {
	for _, b := range f.blogs {
		if b.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeBlogStore) ListBlogs(_ context.Context, opts db.ListOptions) ([]models.Blog, db.PageMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts.Normalize()

	matched := make([]models.Blog, 0, len(f.blogs))
	for _, b := range f.blogs {
		if !b.IsPublished {
			continue
		}
		if len(opts.Tags) > 0 && !hasAnyTag(b.Tags, opts.Tags) {
			continue
		}
		if opts.Genre != "" && b.Genre != opts.Genre {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(b.Title+" "+b.Content), strings.ToLower(opts.Query)) {
			continue
		}
		matched = append(matched, *b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	meta := db.NewPageMeta(int64(len(matched)), opts.Page, opts.Limit)
	start := (opts.Page - 1) * opts.Limit
	if start >= len(matched) {
		return []models.Blog{}, meta, nil
	}
	end := start + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], meta, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (f *fakeBlogStore) GetBlogByID(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, apperr.NotFound("blog not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlogStore) GetPublishedBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	b, err := f.GetBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsPublished {
		return nil, apperr.NotFound("blog not found")
	}
	return b, nil
}

func (f *fakeBlogStore) GetBlogBySlug(_ context.Context, slug string) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blogs {
		if b.Slug == slug && b.IsPublished {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("blog not found")
}

func (f *fakeBlogStore) CreateBlog(_ context.Context, blog *models.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog.ID = primitive.NewObjectID()
	base := models.SlugBase(blog.Title)
	slug := base
	for n := 1; f.slugTaken(slug); n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	blog.Slug = slug
	blog.EstimatedReadTime = models.ReadTime(blog.Content)
	blog.CreatedAt = time.Now().UTC()
	cp := *blog
	f.blogs[blog.ID] = &cp
	return nil
}

func (f *fakeBlogStore) UpdateBlog(_ context.Context, id primitive.ObjectID, patch db.BlogPatch) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, apperr.NotFound("blog not found")
	}
	if patch.Title != nil && *patch.Title != b.Title {
		b.Title = *patch.Title
		base := models.SlugBase(b.Title)
		slug := base
		for n := 1; f.slugTaken(slug) && b.Slug != slug; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		b.Slug = slug
	}
	if patch.Content != nil {
		b.Content = *patch.Content
		b.EstimatedReadTime = models.ReadTime(b.Content)
	}
	if patch.Tags != nil {
		b.Tags = *patch.Tags
	}
	if patch.CoverImage != nil {
		b.CoverImage = *patch.CoverImage
	}
	if patch.IsPublished != nil {
		b.IsPublished = *patch.IsPublished
	}
	if patch.Genre != nil {
		b.Genre = *patch.Genre
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (f *fakeBlogStore) DeleteBlog(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blogs[id]; !ok {
		return apperr.NotFound("blog not found")
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeBlogStore) ToggleLike(_ context.Context, blogID, userID primitive.ObjectID) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[blogID]
	if !ok {
		return "", 0, apperr.NotFound("blog not found")
	}
	action := "liked"
	if b.LikedBy(userID) {
		action = "unliked"
		kept := b.Likes[:0]
		for _, id := range b.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		b.Likes = kept
	} else {
		b.Likes = append(b.Likes, userID)
	}
	b.LikesCount = len(b.Likes)
	return action, b.LikesCount, nil
}

func (f *fakeBlogStore) AddComment(_ context.Context, blogID primitive.ObjectID, comment models.Comment) (models.Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[blogID]
	if !ok {
		return models.Comment{}, 0, apperr.NotFound("blog not found")
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	b.Comments = append(b.Comments, comment)
	b.CommentsCount = len(b.Comments)
	return comment, b.CommentsCount, nil
}

func (f *fakeBlogStore) RemoveComment(_ context.Context, blogID, commentID primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[blogID]
	if !ok {
		return 0, apperr.NotFound("blog not found")
	}
	kept := b.Comments[:0]
	for _, c := range b.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	b.Comments = kept
	b.CommentsCount = len(b.Comments)
	return b.CommentsCount, nil
}

func (f *fakeBlogStore) UserSummary(_ context.Context, id primitive.ObjectID) (*models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id.IsZero() {
		return nil, nil
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	summary := u.Summary()
	return &summary, nil
}

func (f *fakeBlogStore) BlogExistsPublished(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	return ok && b.IsPublished, nil
}

func (f *fakeBlogStore) BlogsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Blog, 0, len(ids))
	for _, id := range ids {
		if b, ok := f.blogs[id]; ok && b.IsPublished {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeUserStore backs the users handler tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) addUser(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range f.users {
		if u.Email == email {
			return apperr.Validation("email", "email already in use")
		}
	}
	user.Email = email
	user.ID = primitive.NewObjectID()
	user.Active = true
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Bookmarks == nil {
		user.Bookmarks = []primitive.ObjectID{}
	}
	user.CreatedAt = time.Now().UTC()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || !u.Active {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ToggleBookmark(_ context.Context, userID, blogID primitive.ObjectID) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return "", 0, apperr.NotFound("user not found")
	}
	if u.HasBookmark(blogID) {
		kept := u.Bookmarks[:0]
		for _, id := range u.Bookmarks {
			if id != blogID {
				kept = append(kept, id)
			}
		}
		u.Bookmarks = kept
		return "removed", len(u.Bookmarks), nil
	}
	u.Bookmarks = append(u.Bookmarks, blogID)
	return "added", len(u.Bookmarks), nil
}
