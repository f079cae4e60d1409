package client

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sachiny0106/LinkUp/models"
)

// ActionState tracks the lifecycle of an optimistic mutation.
type ActionState int

const (
	// StatePending means the local view was updated but the server has not
	// confirmed yet.
	StatePending ActionState = iota
	// StateConfirmed means the server accepted the mutation and the local
	// view now reflects authoritative values.
	StateConfirmed
	// StateRolledBack means the request failed and the local view was
	// restored to its pre-mutation values.
	StateRolledBack
)

func (s ActionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// EngagementView is a read-only snapshot of a post's engagement as seen by
// one viewer.
type EngagementView struct {
	PostID       string
	Liked        bool
	LikeCount    int
	CommentCount int
	ShareCount   int
	Comments     []models.Comment
	// Pending is true while at least one optimistic mutation is still
	// waiting on the server.
	Pending bool
}

// EngagementState maintains an optimistically updated local view of a single
// post's engagement for one viewer. Mutations apply locally first, then hit
// the server; on failure the previous values are restored. Safe for
// concurrent use.
type EngagementState struct {
	client   *Client
	userID   string
	userName string

	mu           sync.Mutex
	postID       string
	liked        bool
	likeCount    int
	commentCount int
	shareCount   int
	comments     []models.Comment
	inflight     int
}

// NewEngagementState seeds local state from a post already fetched from the
// server. userID identifies the viewer whose like membership is tracked.
func NewEngagementState(c *Client, post *models.Post, userID, userName string) *EngagementState {
	return &EngagementState{
		client:       c,
		userID:       userID,
		userName:     userName,
		postID:       post.PostID,
		liked:        post.LikedBy(userID),
		likeCount:    post.LikeCount,
		commentCount: post.CommentCount,
		shareCount:   post.ShareCount,
		comments:     append([]models.Comment(nil), post.Comments...),
	}
}

// Snapshot returns the current local view.
func (e *EngagementState) Snapshot() EngagementView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngagementView{
		PostID:       e.postID,
		Liked:        e.liked,
		LikeCount:    e.likeCount,
		CommentCount: e.commentCount,
		ShareCount:   e.shareCount,
		Comments:     append([]models.Comment(nil), e.comments...),
		Pending:      e.inflight > 0,
	}
}

// ToggleLike flips the local like immediately, then confirms with the
// server. On success the server's count and membership replace the local
// guess; on failure the previous values are restored.
func (e *EngagementState) ToggleLike(ctx context.Context) (ActionState, error) {
	e.mu.Lock()
	prevLiked, prevCount := e.liked, e.likeCount
	e.liked = !e.liked
	if e.liked {
		e.likeCount++
	} else if e.likeCount > 0 {
		e.likeCount--
	}
	e.inflight++
	e.mu.Unlock()

	resp, err := e.client.ToggleLike(ctx, e.postID, e.userID, e.userName)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight--
	if err != nil {
		e.liked, e.likeCount = prevLiked, prevCount
		return StateRolledBack, err
	}
	e.liked = resp.Liked
	e.likeCount = resp.LikeCount
	return StateConfirmed, nil
}

// AddComment appends the comment locally, then confirms with the server.
// The placeholder carries a client-generated id so completion can find
// it again: a Reconcile landing while the request is in flight replaces
// the comment list wholesale, and rollback must not touch anything but
// the placeholder itself.
func (e *EngagementState) AddComment(ctx context.Context, content, authorAvatar string) (ActionState, *models.Comment, error) {
	placeholder := models.Comment{
		ID:         primitive.NewObjectID(),
		Content:    content,
		AuthorID:   e.userID,
		AuthorName: e.userName,
	}

	e.mu.Lock()
	e.comments = append(e.comments, placeholder)
	e.commentCount++
	e.inflight++
	e.mu.Unlock()

	resp, err := e.client.AddComment(ctx, e.postID, AddCommentInput{
		Content:      content,
		AuthorID:     e.userID,
		AuthorName:   e.userName,
		AuthorAvatar: authorAvatar,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight--

	idx := commentIndex(e.comments, placeholder.ID)

	if err != nil {
		// skip the rollback when a reconcile already replaced the list
		if idx >= 0 {
			e.comments = append(e.comments[:idx], e.comments[idx+1:]...)
			if e.commentCount > 0 {
				e.commentCount--
			}
		}
		return StateRolledBack, nil, err
	}

	if idx >= 0 {
		e.comments[idx] = resp.Comment
	} else if commentIndex(e.comments, resp.Comment.ID) < 0 {
		e.comments = append(e.comments, resp.Comment)
	}
	e.commentCount = resp.CommentCount
	return StateConfirmed, &resp.Comment, nil
}

func commentIndex(comments []models.Comment, id primitive.ObjectID) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Share bumps the local share count, then confirms with the server. Repeat
// shares by the same viewer are accepted by the server without another
// increment, so the confirmed count may undo the local bump.
func (e *EngagementState) Share(ctx context.Context) (ActionState, string, error) {
	e.mu.Lock()
	prevCount := e.shareCount
	e.shareCount++
	e.inflight++
	e.mu.Unlock()

	resp, err := e.client.Share(ctx, e.postID, e.userID, e.userName)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight--
	if err != nil {
		e.shareCount = prevCount
		return StateRolledBack, "", err
	}
	e.shareCount = resp.ShareCount
	return StateConfirmed, resp.ShareURL, nil
}

// Reconcile replaces the local view with a freshly fetched post. Server
// state wins wholesale: counters, the comment list and the viewer's like
// membership are all taken from the post.
func (e *EngagementState) Reconcile(post *models.Post) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.liked = post.LikedBy(e.userID)
	e.likeCount = post.LikeCount
	e.commentCount = post.CommentCount
	e.shareCount = post.ShareCount
	e.comments = append([]models.Comment(nil), post.Comments...)
}

// Refresh fetches the post and reconciles the local view with it.
func (e *EngagementState) Refresh(ctx context.Context) error {
	post, err := e.client.GetPost(ctx, e.postID)
	if err != nil {
		return err
	}
	e.Reconcile(post)
	return nil
}
