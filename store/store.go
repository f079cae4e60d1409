// Package store defines the storage contracts for posts and profiles.
// The mongodb package holds the authoritative implementation; memstore
// mirrors its semantics in memory for tests and local development.
package store

import (
	"context"

	"github.com/sachiny0106/LinkUp/models"
)

// DefaultListLimit is the fixed page size for post listings. There is
// no cursor pagination; callers always get the newest page.
const DefaultListLimit = 50

type ListOptions struct {
	AuthorID string
	Limit    int
}

type CreatePostInput struct {
	Content    string
	AuthorID   string
	AuthorName string
	Media      []models.MediaAttachment
}

type CommentInput struct {
	Content      string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
}

type LikeResult struct {
	Liked     bool
	LikeCount int
	Likes     []models.Engagement
}

type CommentResult struct {
	Comment      models.Comment
	CommentCount int
}

type ShareResult struct {
	Shared     bool
	ShareCount int
}

// PostStore is the authoritative CRUD and engagement surface over
// posts. Implementations must keep every denormalized counter equal to
// the length of its embedded collection after each mutation, and must
// floor counters at zero on decrement.
type PostStore interface {
	Create(ctx context.Context, in CreatePostInput) (*models.Post, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, opts ListOptions) ([]models.Post, error)
	UpdateContent(ctx context.Context, postID, userID, content string) (*models.Post, error)
	Delete(ctx context.Context, postID, userID string) error

	// ToggleLike removes the user's like when present, appends one
	// otherwise, and reports the resulting state.
	ToggleLike(ctx context.Context, postID, userID, userName string) (*LikeResult, error)
	AddComment(ctx context.Context, postID string, in CommentInput) (*CommentResult, error)
	// DeleteComment succeeds for the comment author or the post author
	// and returns the new comment count.
	DeleteComment(ctx context.Context, postID, commentID, userID string) (int, error)
	// Share appends at most one share per user; repeat shares succeed
	// without changing the count.
	Share(ctx context.Context, postID, userID, userName string) (*ShareResult, error)

	Likes(ctx context.Context, postID string) ([]models.Engagement, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	SearchContent(ctx context.Context, query string, limit int) ([]models.Post, error)
}

type UpsertUserInput struct {
	UID            string
	Email          string
	Name           string
	Bio            *string
	Headline       *string
	ProfilePicture *string
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Email          *string
	Name           *string
	Bio            *string
	Headline       *string
	ProfilePicture *string
}

type CompleteProfileInput struct {
	UID            string
	Name           string
	Headline       string
	Bio            string
	ProfilePicture string
}

type UserStore interface {
	// Upsert creates the profile on first submission and updates it on
	// every later one, keyed by the external identity id.
	Upsert(ctx context.Context, in UpsertUserInput) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	Update(ctx context.Context, uid string, in UpdateUserInput) (*models.User, error)
	CompleteProfile(ctx context.Context, in CompleteProfileInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SearchName(ctx context.Context, query string, limit int) ([]models.User, error)
}
