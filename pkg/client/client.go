// Package client is a typed client for the blog platform API. The credential
// is carried explicitly on the client value instead of mutating any global
// transport state: WithToken returns a derived client bound to a token, with
// lifecycle tied to login/logout in the calling code.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with the given
// bearer token. The receiver is unchanged.
func (c *Client) WithToken(token string) *Client {
	derived := *c
	derived.token = token
	return &derived
}

// envelope mirrors the server's canonical response shape.
type envelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Metadata json.RawMessage `json:"metadata"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &envelope{Status: "success"}, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     env.Status,
			Message:    env.Message,
		}
	}
	return &env, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) (*envelope, error) {
	env, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// ListParams are the listing filters; zero values are omitted from the
// query. Minimal defaults to true for list views, matching the UI's use.
type ListParams struct {
	Page        int
	Limit       int
	Query       string
	Tags        []string
	Genre       string
	From        string
	To          string
	MinLikes    int
	MinComments int
	MinRead     int
	MaxRead     int
	Sort        string
	Minimal     *bool
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	setInt := func(key string, v int) {
		if v > 0 {
			q.Set(key, strconv.Itoa(v))
		}
	}
	setInt("page", p.Page)
	setInt("limit", p.Limit)
	setInt("minLikes", p.MinLikes)
	setInt("minComments", p.MinComments)
	setInt("minRead", p.MinRead)
	setInt("maxRead", p.MaxRead)
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if len(p.Tags) > 0 {
		q.Set("tags", strings.Join(p.Tags, ","))
	}
	if p.Genre != "" {
		q.Set("genre", p.Genre)
	}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	minimal := true
	if p.Minimal != nil {
		minimal = *p.Minimal
	}
	q.Set("minimal", strconv.FormatBool(minimal))
	return q
}

// ListBlogs fetches a page of posts with its pagination metadata.
func (c *Client) ListBlogs(ctx context.Context, params ListParams) (*BlogPage, error) {
	var data struct {
		Blogs []Blog `json:"blogs"`
	}
	env, err := c.get(ctx, "/blogs", params.values(), &data)
	if err != nil {
		return nil, err
	}
	page := &BlogPage{Blogs: data.Blogs}
	if len(env.Metadata) > 0 {
		if err := json.Unmarshal(env.Metadata, &page.Meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return page, nil
}

// ListBlogsByTag fetches published posts carrying the tag.
func (c *Client) ListBlogsByTag(ctx context.Context, tag string, params ListParams) (*BlogPage, error) {
	var data struct {
		Blogs []Blog `json:"blogs"`
	}
	env, err := c.get(ctx, "/blogs/tag/"+url.PathEscape(tag), params.values(), &data)
	if err != nil {
		return nil, err
	}
	page := &BlogPage{Blogs: data.Blogs}
	if len(env.Metadata) > 0 {
		if err := json.Unmarshal(env.Metadata, &page.Meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return page, nil
}

func (c *Client) BlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	var data struct {
		Blog *Blog `json:"blog"`
	}
	if _, err := c.get(ctx, "/blogs/slug/"+url.PathEscape(slug), nil, &data); err != nil {
		return nil, err
	}
	return data.Blog, nil
}

func (c *Client) BlogByID(ctx context.Context, id string) (*Blog, error) {
	var data struct {
		Blog *Blog `json:"blog"`
	}
	if _, err := c.get(ctx, "/blogs/"+url.PathEscape(id), nil, &data); err != nil {
		return nil, err
	}
	return data.Blog, nil
}

// BlogInput is the writable field subset for create and update.
type BlogInput struct {
	Title       *string   `json:"title,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	CoverImage  *string   `json:"coverImage,omitempty"`
	IsPublished *bool     `json:"isPublished,omitempty"`
	Genre       *string   `json:"genre,omitempty"`
}

func (c *Client) CreateBlog(ctx context.Context, input BlogInput) (*Blog, error) {
	var data struct {
		Blog *Blog `json:"blog"`
	}
	if err := c.send(ctx, http.MethodPost, "/blogs", input, &data); err != nil {
		return nil, err
	}
	return data.Blog, nil
}

func (c *Client) UpdateBlog(ctx context.Context, id string, input BlogInput) (*Blog, error) {
	var data struct {
		Blog *Blog `json:"blog"`
	}
	if err := c.send(ctx, http.MethodPatch, "/blogs/"+url.PathEscape(id), input, &data); err != nil {
		return nil, err
	}
	return data.Blog, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/blogs/"+url.PathEscape(id), nil, nil)
}

// LikeResult reports the action a like toggle took.
type LikeResult struct {
	Action     string `json:"action"`
	LikesCount int    `json:"likesCount"`
}

func (c *Client) ToggleLike(ctx context.Context, id string) (*LikeResult, error) {
	var result LikeResult
	if err := c.send(ctx, http.MethodPost, "/blogs/"+url.PathEscape(id)+"/like", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CommentResult carries the created comment and the new comment count.
type CommentResult struct {
	Comment       *Comment `json:"comment"`
	CommentsCount int      `json:"commentsCount"`
}

func (c *Client) AddComment(ctx context.Context, id, text string) (*CommentResult, error) {
	var result CommentResult
	body := map[string]string{"text": text}
	if err := c.send(ctx, http.MethodPost, "/blogs/"+url.PathEscape(id)+"/comments", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteComment(ctx context.Context, id, commentID string) (*CommentResult, error) {
	var result CommentResult
	path := "/blogs/" + url.PathEscape(id) + "/comments/" + url.PathEscape(commentID)
	if err := c.send(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BookmarkResult reports the action a bookmark toggle took.
type BookmarkResult struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

func (c *Client) ToggleBookmark(ctx context.Context, blogID string) (*BookmarkResult, error) {
	var result BookmarkResult
	if err := c.send(ctx, http.MethodPost, "/users/bookmarks/"+url.PathEscape(blogID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Bookmarks(ctx context.Context) ([]Blog, error) {
	var data struct {
		Bookmarks []Blog `json:"bookmarks"`
	}
	if _, err := c.get(ctx, "/users/bookmarks", nil, &data); err != nil {
		return nil, err
	}
	return data.Bookmarks, nil
}

// Session is an authenticated identity plus its bearer token.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (c *Client) Signup(ctx context.Context, name, email, password, passwordConfirm string) (*Session, error) {
	var session Session
	body := map[string]string{
		"name":            name,
		"email":           email,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	}
	if err := c.send(ctx, http.MethodPost, "/users/signup", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/users/login", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.get(ctx, "/users/logout", nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var data struct {
		User *User `json:"user"`
	}
	if _, err := c.get(ctx, "/users/me", nil, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}
