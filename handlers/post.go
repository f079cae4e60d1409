package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

const (
	requestTimeout   = 10 * time.Second
	searchResultCap  = 10
	minSearchRuneLen = 2
)

type PostHandler struct {
	store        store.PostStore
	log          *zap.Logger
	shareBaseURL string
}

func NewPostHandler(s store.PostStore, log *zap.Logger, shareBaseURL string) *PostHandler {
	return &PostHandler{store: s, log: log, shareBaseURL: shareBaseURL}
}

type createPostRequest struct {
	Content    string                   `json:"content" binding:"required"`
	AuthorID   string                   `json:"authorId" binding:"required"`
	AuthorName string                   `json:"authorName" binding:"required"`
	Media      []models.MediaAttachment `json:"media"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := h.store.Create(ctx, store.CreatePostInput{
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Media:      req.Media,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("post created",
		zap.String("postId", post.PostID),
		zap.String("authorId", post.AuthorID))
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	limit, _ := strconv.Atoi(c.Query("limit"))
	posts, err := h.store.List(ctx, store.ListOptions{
		AuthorID: c.Query("userId"),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetOrSearch lets the static /posts/search path coexist with the
// :postId parameter, which gin's router cannot express directly.
func (h *PostHandler) GetOrSearch(c *gin.Context) {
	if c.Param("postId") == "search" {
		h.Search(c)
		return
	}
	h.Get(c)
}

func (h *PostHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := h.store.GetByID(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Search short-circuits queries under two characters without touching
// storage.
func (h *PostHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < minSearchRuneLen {
		c.JSON(http.StatusOK, []models.Post{})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	posts, err := h.store.SearchContent(ctx, q, searchResultCap)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type updatePostRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := h.store.UpdateContent(ctx, c.Param("postId"), req.UserID, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := h.store.Delete(ctx, c.Param("postId"), userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("post deleted",
		zap.String("postId", c.Param("postId")),
		zap.String("userId", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type actorRequest struct {
	UserID   string `json:"userId" binding:"required"`
	UserName string `json:"userName" binding:"required"`
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user information"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := h.store.ToggleLike(ctx, c.Param("postId"), req.UserID, req.UserName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":     result.Liked,
		"likeCount": result.LikeCount,
		"likes":     result.Likes,
	})
}

type commentRequest struct {
	Content      string `json:"content" binding:"required"`
	AuthorID     string `json:"authorId" binding:"required"`
	AuthorName   string `json:"authorName" binding:"required"`
	AuthorAvatar string `json:"authorAvatar"`
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := h.store.AddComment(ctx, c.Param("postId"), store.CommentInput{
		Content:      req.Content,
		AuthorID:     req.AuthorID,
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment":      result.Comment,
		"commentCount": result.CommentCount,
	})
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	userID := actorID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	count, err := h.store.DeleteComment(ctx, c.Param("postId"), c.Param("commentId"), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commentCount": count})
}

func (h *PostHandler) Share(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user information"})
		return
	}

	postID := c.Param("postId")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := h.store.Share(ctx, postID, req.UserID, req.UserName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shared":     result.Shared,
		"shareCount": result.ShareCount,
		"shareUrl":   h.shareURL(c, postID),
	})
}

func (h *PostHandler) Likes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	likes, err := h.store.Likes(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

func (h *PostHandler) Comments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	comments, err := h.store.Comments(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *PostHandler) shareURL(c *gin.Context, postID string) string {
	base := h.shareBaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return fmt.Sprintf("%s/post/%s", strings.TrimRight(base, "/"), postID)
}
