// Package client is a typed Go client for the LinkUp API. It layers an
// optimistic engagement state machine and a polling synchronizer on top of
// the plain REST operations, so callers can reflect likes, comments and
// shares immediately and reconcile with the server afterwards.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to a LinkUp server. The zero value is not usable; call New.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LikeResponse is the server's reply to a like toggle.
type LikeResponse struct {
	Liked     bool                `json:"liked"`
	LikeCount int                 `json:"likeCount"`
	Likes     []models.Engagement `json:"likes"`
}

// CommentResponse is the server's reply to adding a comment.
type CommentResponse struct {
	Comment      models.Comment `json:"comment"`
	CommentCount int            `json:"commentCount"`
}

// ShareResponse is the server's reply to sharing a post.
type ShareResponse struct {
	Shared     bool   `json:"shared"`
	ShareCount int    `json:"shareCount"`
	ShareURL   string `json:"shareUrl"`
}

// SearchResponse is the combined post and user search result.
type SearchResponse struct {
	Posts []models.Post `json:"posts"`
	Users []models.User `json:"users"`
	Total int           `json:"total"`
}

// CreatePostInput is the payload for CreatePost.
type CreatePostInput struct {
	Content    string                   `json:"content"`
	AuthorID   string                   `json:"authorId"`
	AuthorName string                   `json:"authorName"`
	Media      []models.MediaAttachment `json:"media,omitempty"`
}

func (c *Client) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns the feed, newest first. authorID and limit are optional;
// pass "" and 0 for the defaults.
func (c *Client) ListPosts(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	q := url.Values{}
	if authorID != "" {
		q.Set("userId", authorID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) UpdatePost(ctx context.Context, postID, userID, content string) (*models.Post, error) {
	body := map[string]string{"userId": userID, "content": content}
	var post models.Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(postID), body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID, userID string) error {
	path := "/api/posts/" + url.PathEscape(postID) + "?userId=" + url.QueryEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ToggleLike(ctx context.Context, postID, userID, userName string) (*LikeResponse, error) {
	body := map[string]string{"userId": userID, "userName": userName}
	var out LikeResponse
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/like", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddCommentInput is the payload for AddComment.
type AddCommentInput struct {
	Content      string `json:"content"`
	AuthorID     string `json:"authorId"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`
}

func (c *Client) AddComment(ctx context.Context, postID string, in AddCommentInput) (*CommentResponse, error) {
	var out CommentResponse
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comment", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID, userID string) (int, error) {
	path := "/api/posts/" + url.PathEscape(postID) + "/comment/" + url.PathEscape(commentID) +
		"?userId=" + url.QueryEscape(userID)
	var out struct {
		CommentCount int `json:"commentCount"`
	}
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return 0, err
	}
	return out.CommentCount, nil
}

func (c *Client) Share(ctx context.Context, postID, userID, userName string) (*ShareResponse, error) {
	body := map[string]string{"userId": userID, "userName": userName}
	var out ShareResponse
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/share", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Likes(ctx context.Context, postID string) ([]models.Engagement, error) {
	var out []models.Engagement
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/likes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/comments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	var out []models.Post
	path := "/api/posts/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var out []models.User
	path := "/api/users/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	path := "/api/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(uid), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUserInput is the payload for UpsertUser.
type UpsertUserInput struct {
	UID            string  `json:"uid"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Bio            *string `json:"bio,omitempty"`
	Headline       *string `json:"headline,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

func (c *Client) UpsertUser(ctx context.Context, in UpsertUserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Upstream("Request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream("Failed to decode response", err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) != nil || payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: payload.Message}
	case http.StatusBadRequest:
		return &apperror.AppError{Err: apperror.ErrValidation, Message: payload.Message}
	case http.StatusForbidden:
		return &apperror.AppError{Err: apperror.ErrForbidden, Message: payload.Message}
	default:
		return &apperror.AppError{
			Err:     apperror.ErrUpstream,
			Message: fmt.Sprintf("%s (status %d)", payload.Message, resp.StatusCode),
		}
	}
}
