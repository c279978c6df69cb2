package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/db"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/middleware"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/models"
)

// BlogStore is the persistence surface the blog handlers need.
type BlogStore interface {
	ListBlogs(ctx context.Context, opts db.ListOptions) ([]models.Blog, db.PageMeta, error)
	GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	GetPublishedBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	CreateBlog(ctx context.Context, blog *models.Blog) error
	UpdateBlog(ctx context.Context, id primitive.ObjectID, patch db.BlogPatch) (*models.Blog, error)
	DeleteBlog(ctx context.Context, id primitive.ObjectID) error
	ToggleLike(ctx context.Context, blogID, userID primitive.ObjectID) (string, int, error)
	AddComment(ctx context.Context, blogID primitive.ObjectID, comment models.Comment) (models.Comment, int, error)
	RemoveComment(ctx context.Context, blogID, commentID primitive.ObjectID) (int, error)
	UserSummary(ctx context.Context, id primitive.ObjectID) (*models.UserSummary, error)
}

type BlogsHandler struct {
	store BlogStore
	log   zerolog.Logger
}

func NewBlogsHandler(store BlogStore, log zerolog.Logger) *BlogsHandler {
	return &BlogsHandler{store: store, log: log}
}

func (h *BlogsHandler) List(w http.ResponseWriter, r *http.Request)          { handle(h.log, w, r, h.list) }
func (h *BlogsHandler) ListByTag(w http.ResponseWriter, r *http.Request)     { handle(h.log, w, r, h.listByTag) }
func (h *BlogsHandler) GetBySlug(w http.ResponseWriter, r *http.Request)     { handle(h.log, w, r, h.getBySlug) }
func (h *BlogsHandler) GetByID(w http.ResponseWriter, r *http.Request)       { handle(h.log, w, r, h.getByID) }
func (h *BlogsHandler) Create(w http.ResponseWriter, r *http.Request)        { handle(h.log, w, r, h.create) }
func (h *BlogsHandler) Update(w http.ResponseWriter, r *http.Request)        { handle(h.log, w, r, h.update) }
func (h *BlogsHandler) Delete(w http.ResponseWriter, r *http.Request)        { handle(h.log, w, r, h.delete) }
func (h *BlogsHandler) ToggleLike(w http.ResponseWriter, r *http.Request)    { handle(h.log, w, r, h.toggleLike) }
func (h *BlogsHandler) AddComment(w http.ResponseWriter, r *http.Request)    { handle(h.log, w, r, h.addComment) }
func (h *BlogsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) { handle(h.log, w, r, h.deleteComment) }

func (h *BlogsHandler) list(w http.ResponseWriter, r *http.Request) error {
	opts, err := parseListOptions(r)
	if err != nil {
		return err
	}
	return h.respondListing(w, r, opts)
}

func (h *BlogsHandler) listByTag(w http.ResponseWriter, r *http.Request) error {
	opts, err := parseListOptions(r)
	if err != nil {
		return err
	}
	opts.Tags = []string{chi.URLParam(r, "tag")}
	return h.respondListing(w, r, opts)
}

func (h *BlogsHandler) respondListing(w http.ResponseWriter, r *http.Request, opts db.ListOptions) error {
	blogs, meta, err := h.store.ListBlogs(r.Context(), opts)
	if err != nil {
		return err
	}
	if opts.Minimal {
		items := make([]models.BlogListItem, 0, len(blogs))
		for i := range blogs {
			items = append(items, blogs[i].ListItem())
		}
		respondPage(w, map[string]interface{}{"blogs": items}, meta)
		return nil
	}
	respondPage(w, map[string]interface{}{"blogs": blogs}, meta)
	return nil
}

// blogDetail layers the populated author over the raw document; the outer
// field shadows the embedded ObjectID reference in the JSON output.
type blogDetail struct {
	*models.Blog
	AuthorUser *models.UserSummary `json:"authorUser,omitempty"`
}

func (h *BlogsHandler) getBySlug(w http.ResponseWriter, r *http.Request) error {
	blog, err := h.store.GetBlogBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return err
	}
	return h.respondDetail(w, r, blog)
}

func (h *BlogsHandler) getByID(w http.ResponseWriter, r *http.Request) error {
	id, err := blogIDParam(r)
	if err != nil {
		return err
	}
	blog, err := h.store.GetPublishedBlogByID(r.Context(), id)
	if err != nil {
		return err
	}
	return h.respondDetail(w, r, blog)
}

func (h *BlogsHandler) respondDetail(w http.ResponseWriter, r *http.Request, blog *models.Blog) error {
	author, err := h.store.UserSummary(r.Context(), blog.AuthorUser)
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"blog": blogDetail{Blog: blog, AuthorUser: author},
	})
	return nil
}

// createBlogRequest is the allow-listed field subset for create and update.
// Ownership fields are not decodable here, so client-supplied values for
// them are dropped on the floor.
type createBlogRequest struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Tags        *[]string `json:"tags"`
	CoverImage  *string   `json:"coverImage"`
	IsPublished *bool     `json:"isPublished"`
	Genre       *string   `json:"genre"`
}

func (h *BlogsHandler) create(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}

	var req createBlogRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Title == nil {
		return apperr.Validation("title", "a blog post must have a title")
	}
	if err := validateTitle(*req.Title); err != nil {
		return err
	}
	if req.Content == nil {
		return apperr.Validation("content", "a blog post must have content")
	}
	if err := validateContent(*req.Content); err != nil {
		return err
	}

	blog := &models.Blog{
		Title:       strings.TrimSpace(*req.Title),
		Content:     *req.Content,
		Author:      user.Name,
		AuthorUser:  user.ID,
		IsPublished: true,
	}
	if req.Tags != nil {
		blog.Tags = *req.Tags
	}
	if req.CoverImage != nil {
		blog.CoverImage = *req.CoverImage
	}
	if req.Genre != nil {
		blog.Genre = *req.Genre
	}
	if req.IsPublished != nil {
		blog.IsPublished = *req.IsPublished
	}

	if err := h.store.CreateBlog(r.Context(), blog); err != nil {
		return err
	}
	respondData(w, http.StatusCreated, map[string]interface{}{"blog": blog})
	return nil
}

func (h *BlogsHandler) update(w http.ResponseWriter, r *http.Request) error {
	blog, err := h.ownedBlog(r)
	if err != nil {
		return err
	}

	var req createBlogRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Content != nil {
		if err := validateContent(*req.Content); err != nil {
			return err
		}
	}

	updated, err := h.store.UpdateBlog(r.Context(), blog.ID, db.BlogPatch{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
		Genre:       req.Genre,
	})
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{"blog": updated})
	return nil
}

func (h *BlogsHandler) delete(w http.ResponseWriter, r *http.Request) error {
	blog, err := h.ownedBlog(r)
	if err != nil {
		return err
	}
	if err := h.store.DeleteBlog(r.Context(), blog.ID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *BlogsHandler) toggleLike(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	id, err := blogIDParam(r)
	if err != nil {
		return err
	}
	action, count, err := h.store.ToggleLike(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"action":     action,
		"likesCount": count,
	})
	return nil
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *BlogsHandler) addComment(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	id, err := blogIDParam(r)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apperr.Validation("text", "comment text is required")
	}
	if utf8.RuneCountInString(text) > models.CommentMaxLen {
		return apperr.Validation("text", "comment text must be at most 2000 characters")
	}

	comment, count, err := h.store.AddComment(r.Context(), id, models.Comment{
		Author:     user.ID,
		AuthorName: user.Name,
		Text:       text,
	})
	if err != nil {
		return err
	}
	respondData(w, http.StatusCreated, map[string]interface{}{
		"comment":       comment,
		"commentsCount": count,
	})
	return nil
}

func (h *BlogsHandler) deleteComment(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	id, err := blogIDParam(r)
	if err != nil {
		return err
	}
	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentId"))
	if err != nil {
		return apperr.NotFound("comment not found")
	}

	blog, err := h.store.GetBlogByID(r.Context(), id)
	if err != nil {
		return err
	}
	comment := blog.CommentByID(commentID)
	if comment == nil {
		return apperr.NotFound("comment not found")
	}
	if comment.Author != user.ID && blog.AuthorUser != user.ID && !user.IsAdmin() {
		return apperr.Forbidden("you do not have permission to delete this comment")
	}

	count, err := h.store.RemoveComment(r.Context(), id, commentID)
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{"commentsCount": count})
	return nil
}

// ownedBlog loads the target post and enforces the owner-or-admin rule for
// mutations.
func (h *BlogsHandler) ownedBlog(r *http.Request) (*models.Blog, error) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return nil, apperr.Unauthenticated("you are not logged in")
	}
	id, err := blogIDParam(r)
	if err != nil {
		return nil, err
	}
	blog, err := h.store.GetBlogByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if blog.AuthorUser != user.ID && !user.IsAdmin() {
		return nil, apperr.Forbidden("you can only modify your own posts")
	}
	return blog, nil
}

func blogIDParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("id", "invalid blog id")
	}
	return id, nil
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(title))
	if length < models.TitleMinLen {
		return apperr.Validation("title", "a blog title must have at least 3 characters")
	}
	if length > models.TitleMaxLen {
		return apperr.Validation("title", "a blog title must have at most 120 characters")
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(content) < models.ContentMinLen {
		return apperr.Validation("content", "content should be at least 50 characters")
	}
	return nil
}

func parseListOptions(r *http.Request) (db.ListOptions, error) {
	q := r.URL.Query()
	opts := db.ListOptions{
		Page:        parsePositiveInt(q.Get("page"), 1),
		Limit:       parsePositiveInt(q.Get("limit"), 10),
		Query:       strings.TrimSpace(q.Get("q")),
		Genre:       strings.TrimSpace(q.Get("genre")),
		MinLikes:    parsePositiveInt(q.Get("minLikes"), 0),
		MinComments: parsePositiveInt(q.Get("minComments"), 0),
		MinRead:     parsePositiveInt(q.Get("minRead"), 0),
		MaxRead:     parsePositiveInt(q.Get("maxRead"), 0),
		Sort:        strings.TrimSpace(q.Get("sort")),
	}

	for _, raw := range q["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	if v := q.Get("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return opts, apperr.Validation("from", "invalid date")
		}
		opts.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return opts, apperr.Validation("to", "invalid date")
		}
		opts.To = t
	}

	if v := q.Get("minimal"); v != "" {
		minimal, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperr.Validation("minimal", "must be a boolean")
		}
		opts.Minimal = minimal
	}

	return opts, nil
}

func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
