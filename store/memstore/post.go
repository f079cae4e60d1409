// Package memstore implements the store interfaces in memory. It backs
// the test suite and the STORAGE=memory development mode, and mirrors
// the mongodb package's semantics exactly: toggled likes, add-once
// shares, counters kept equal to their collection lengths and floored
// at zero on decrement.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
	seq   map[string]int // insertion order, tie-break for equal timestamps
	next  int
}

func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[string]*models.Post),
		seq:   make(map[string]int),
	}
}

func (s *PostStore) Create(_ context.Context, in store.CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.AuthorID == "" || in.AuthorName == "" {
		return nil, apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLength {
		return nil, apperror.ValidationFailed("content", "Post content exceeds maximum length")
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:         primitive.NewObjectID(),
		PostID:     uuid.NewString(),
		Content:    content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Media:      append([]models.MediaAttachment{}, in.Media...),
		Likes:      []models.Engagement{},
		Comments:   []models.Comment{},
		Shares:     []models.Engagement{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.posts[post.PostID] = post
	s.seq[post.PostID] = s.next
	s.next++
	s.mu.Unlock()

	return copyPost(post), nil
}

func (s *PostStore) GetByID(_ context.Context, postID string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}
	return copyPost(post), nil
}

func (s *PostStore) List(_ context.Context, opts store.ListOptions) ([]models.Post, error) {
	limit := opts.Limit
	if limit <= 0 || limit > store.DefaultListLimit {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	ordered := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if opts.AuthorID != "" && p.AuthorID != opts.AuthorID {
			continue
		}
		ordered = append(ordered, p)
	}
	// latest insertion first so the newest-first sort breaks ties stably
	sort.Slice(ordered, func(i, j int) bool {
		return s.seq[ordered[i].PostID] > s.seq[ordered[j].PostID]
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	// copy before releasing the lock: writers mutate posts in place
	out := make([]models.Post, 0, len(ordered))
	for _, p := range ordered {
		out = append(out, *copyPost(p))
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *PostStore) UpdateContent(_ context.Context, postID, userID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLength {
		return nil, apperror.ValidationFailed("content", "Post content exceeds maximum length")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}
	if post.AuthorID != userID {
		return nil, apperror.Forbidden("Not authorized to edit this post")
	}

	post.Content = content
	post.UpdatedAt = time.Now().UTC()
	return copyPost(post), nil
}

func (s *PostStore) Delete(_ context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return apperror.NotFound("Post")
	}
	if post.AuthorID != userID {
		return apperror.Forbidden("Not authorized to delete this post")
	}

	delete(s.posts, postID)
	delete(s.seq, postID)
	return nil
}

func (s *PostStore) ToggleLike(_ context.Context, postID, userID, userName string) (*store.LikeResult, error) {
	if userID == "" || userName == "" {
		return nil, apperror.ValidationFailed("userId", "Missing user information")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}

	liked := true
	if idx := indexOf(post.Likes, userID); idx >= 0 {
		post.Likes = append(post.Likes[:idx], post.Likes[idx+1:]...)
		post.LikeCount = floorZero(post.LikeCount - 1)
		liked = false
	} else {
		post.Likes = append(post.Likes, models.Engagement{
			UserID:    userID,
			UserName:  userName,
			Timestamp: time.Now().UTC(),
		})
		post.LikeCount++
	}

	return &store.LikeResult{
		Liked:     liked,
		LikeCount: post.LikeCount,
		Likes:     append([]models.Engagement{}, post.Likes...),
	}, nil
}

func (s *PostStore) AddComment(_ context.Context, postID string, in store.CommentInput) (*store.CommentResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.AuthorID == "" || in.AuthorName == "" {
		return nil, apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentContentLength {
		return nil, apperror.ValidationFailed("content", "Comment exceeds maximum length")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:           primitive.NewObjectID(),
		Content:      content,
		AuthorID:     in.AuthorID,
		AuthorName:   in.AuthorName,
		AuthorAvatar: in.AuthorAvatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	post.Comments = append(post.Comments, comment)
	post.CommentCount++

	return &store.CommentResult{Comment: comment, CommentCount: post.CommentCount}, nil
}

func (s *PostStore) DeleteComment(_ context.Context, postID, commentID, userID string) (int, error) {
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return 0, apperror.NotFound("Comment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return 0, apperror.NotFound("Post")
	}

	idx := -1
	for i := range post.Comments {
		if post.Comments[i].ID == cid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, apperror.NotFound("Comment")
	}
	if post.Comments[idx].AuthorID != userID && post.AuthorID != userID {
		return 0, apperror.Forbidden("Not authorized to delete this comment")
	}

	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)
	post.CommentCount = floorZero(post.CommentCount - 1)
	return post.CommentCount, nil
}

func (s *PostStore) Share(_ context.Context, postID, userID, userName string) (*store.ShareResult, error) {
	if userID == "" || userName == "" {
		return nil, apperror.ValidationFailed("userId", "Missing user information")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}

	if indexOf(post.Shares, userID) < 0 {
		post.Shares = append(post.Shares, models.Engagement{
			UserID:    userID,
			UserName:  userName,
			Timestamp: time.Now().UTC(),
		})
		post.ShareCount++
	}

	return &store.ShareResult{Shared: true, ShareCount: post.ShareCount}, nil
}

func (s *PostStore) Likes(_ context.Context, postID string) ([]models.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}
	return append([]models.Engagement{}, post.Likes...), nil
}

func (s *PostStore) Comments(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, apperror.NotFound("Post")
	}
	return append([]models.Comment{}, post.Comments...), nil
}

func (s *PostStore) SearchContent(_ context.Context, query string, limit int) ([]models.Post, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []models.Post{}, nil
	}

	s.mu.RLock()
	matched := make([]*models.Post, 0)
	for _, p := range s.posts {
		if strings.Contains(strings.ToLower(p.Content), needle) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.seq[matched[i].PostID] > s.seq[matched[j].PostID]
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]models.Post, 0, len(matched))
	for _, p := range matched {
		out = append(out, *copyPost(p))
	}
	s.mu.RUnlock()
	return out, nil
}

func indexOf(entries []models.Engagement, userID string) int {
	for i := range entries {
		if entries[i].UserID == userID {
			return i
		}
	}
	return -1
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// copyPost deep-copies so callers cannot alias store-internal state.
func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Media = append([]models.MediaAttachment{}, p.Media...)
	cp.Likes = append([]models.Engagement{}, p.Likes...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	cp.Shares = append([]models.Engagement{}, p.Shares...)
	return &cp
}
