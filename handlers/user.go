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

type UserHandler struct {
	store store.UserStore
	log   *zap.Logger
}

func NewUserHandler(s store.UserStore, log *zap.Logger) *UserHandler {
	return &UserHandler{store: s, log: log}
}

func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	users, err := h.store.List(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users fetched successfully",
		"count":   len(users),
		"users":   users,
	})
}

// GetOrSearch disambiguates the static /users/search path from the
// :uid parameter, same trick as the posts router.
func (h *UserHandler) GetOrSearch(c *gin.Context) {
	if c.Param("uid") == "search" {
		h.Search(c)
		return
	}
	h.Get(c)
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := h.store.GetByUID(ctx, c.Param("uid"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < minSearchRuneLen {
		c.JSON(http.StatusOK, []models.User{})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	users, err := h.store.SearchName(ctx, q, searchResultCap)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type upsertUserRequest struct {
	UID            string  `json:"uid" binding:"required"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Bio            *string `json:"bio"`
	Headline       *string `json:"headline"`
	ProfilePicture *string `json:"profilePicture"`
}

// Upsert creates the profile on first submission and updates it after,
// keyed by the external identity id.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := h.store.Upsert(ctx, store.UpsertUserInput{
		UID:            req.UID,
		Email:          req.Email,
		Name:           req.Name,
		Bio:            req.Bio,
		Headline:       req.Headline,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type completeProfileRequest struct {
	UID            string `json:"uid" binding:"required"`
	Name           string `json:"name"`
	Headline       string `json:"headline"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

func (h *UserHandler) CompleteProfile(c *gin.Context) {
	var req completeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing identity id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := h.store.CompleteProfile(ctx, store.CompleteProfileInput{
		UID:            req.UID,
		Name:           req.Name,
		Headline:       req.Headline,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("profile completed", zap.String("uid", user.UID))
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Email          *string `json:"email"`
	Name           *string `json:"name"`
	Bio            *string `json:"bio"`
	Headline       *string `json:"headline"`
	ProfilePicture *string `json:"profilePicture"`
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := h.store.Update(ctx, c.Param("uid"), store.UpdateUserInput{
		Email:          req.Email,
		Name:           req.Name,
		Bio:            req.Bio,
		Headline:       req.Headline,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
