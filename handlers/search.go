package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

// Caps for the compact combined view. Each corpus is queried with the
// API-level cap and truncated further here.
const (
	combinedPostCap = 3
	combinedUserCap = 5
)

// SearchHandler aggregates the two independent search corpora. A
// failure in one corpus degrades that corpus to an empty list instead
// of failing the whole request.
type SearchHandler struct {
	posts store.PostStore
	users store.UserStore
	log   *zap.Logger
}

func NewSearchHandler(posts store.PostStore, users store.UserStore, log *zap.Logger) *SearchHandler {
	return &SearchHandler{posts: posts, users: users, log: log}
}

func (h *SearchHandler) Combined(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < minSearchRuneLen {
		c.JSON(http.StatusOK, gin.H{
			"users": []models.User{},
			"posts": []models.Post{},
			"total": 0,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	users, err := h.users.SearchName(ctx, q, searchResultCap)
	if err != nil {
		h.log.Warn("user search failed", zap.Error(err), zap.String("q", q))
		users = []models.User{}
	}

	posts, err := h.posts.SearchContent(ctx, q, searchResultCap)
	if err != nil {
		h.log.Warn("post search failed", zap.Error(err), zap.String("q", q))
		posts = []models.Post{}
	}

	total := len(users) + len(posts)
	if len(users) > combinedUserCap {
		users = users[:combinedUserCap]
	}
	if len(posts) > combinedPostCap {
		posts = posts[:combinedPostCap]
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"posts": posts,
		"total": total,
	})
}
