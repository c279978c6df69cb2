package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/apperr"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/middleware"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/models"
)

const bcryptCost = 12

// UserStore is the account persistence surface the user handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ToggleBookmark(ctx context.Context, userID, blogID primitive.ObjectID) (string, int, error)
}

// BookmarkBlogStore resolves bookmark targets.
type BookmarkBlogStore interface {
	BlogExistsPublished(ctx context.Context, id primitive.ObjectID) (bool, error)
	BlogsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Blog, error)
}

type UsersHandler struct {
	store    UserStore
	blogs    BookmarkBlogStore
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewUsersHandler(store UserStore, blogs BookmarkBlogStore, secret []byte, tokenTTL time.Duration, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{store: store, blogs: blogs, secret: secret, tokenTTL: tokenTTL, log: log}
}

func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request)    { handle(h.log, w, r, h.signup) }
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request)     { handle(h.log, w, r, h.login) }
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request)    { handle(h.log, w, r, h.logout) }
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request)        { handle(h.log, w, r, h.me) }
func (h *UsersHandler) AdminPing(w http.ResponseWriter, r *http.Request) { handle(h.log, w, r, h.adminPing) }
func (h *UsersHandler) Bookmarks(w http.ResponseWriter, r *http.Request) { handle(h.log, w, r, h.bookmarks) }
func (h *UsersHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	handle(h.log, w, r, h.toggleBookmark)
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (h *UsersHandler) signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	name := strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 60 {
		return apperr.Validation("name", "name must be between 2 and 60 characters")
	}
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email", "please provide a valid email")
	}
	if utf8.RuneCountInString(req.Password) < models.PasswordMinLen {
		return apperr.Validation("password", "password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirm {
		return apperr.Validation("passwordConfirm", "passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		return err
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		return err
	}
	respondData(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperr.Validation("email", "please provide email and password")
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Unauthenticated("incorrect email or password")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return apperr.Unauthenticated("incorrect email or password")
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
	return nil
}

// logout is a stateless acknowledgment; bearer tokens are simply forgotten
// by the client.
func (h *UsersHandler) logout(w http.ResponseWriter, _ *http.Request) error {
	respondMessage(w, http.StatusOK, "logged out")
	return nil
}

func (h *UsersHandler) me(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	respondData(w, http.StatusOK, map[string]interface{}{"user": user})
	return nil
}

func (h *UsersHandler) adminPing(w http.ResponseWriter, _ *http.Request) error {
	respondMessage(w, http.StatusOK, "admin pong")
	return nil
}

func (h *UsersHandler) bookmarks(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	// Reload for a fresh bookmark set; the context user may be stale.
	current, err := h.store.GetUserByID(r.Context(), user.ID)
	if err != nil {
		return err
	}
	blogs, err := h.blogs.BlogsByIDs(r.Context(), current.Bookmarks)
	if err != nil {
		return err
	}
	items := make([]models.BlogListItem, 0, len(blogs))
	for i := range blogs {
		items = append(items, blogs[i].ListItem())
	}
	respondPage(w, map[string]interface{}{"bookmarks": items}, map[string]int{"count": len(items)})
	return nil
}

func (h *UsersHandler) toggleBookmark(w http.ResponseWriter, r *http.Request) error {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		return apperr.Unauthenticated("you are not logged in")
	}
	blogID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "blogId"))
	if err != nil {
		return apperr.Validation("blogId", "invalid blog id")
	}

	exists, err := h.blogs.BlogExistsPublished(r.Context(), blogID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("blog not found")
	}

	action, count, err := h.store.ToggleBookmark(r.Context(), user.ID, blogID)
	if err != nil {
		return err
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"action": action,
		"count":  count,
	})
	return nil
}

func (h *UsersHandler) signToken(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}
