package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by uid
	seq   map[string]int
	next  int
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*models.User),
		seq:   make(map[string]int),
	}
}

func (s *UserStore) Upsert(_ context.Context, in store.UpsertUserInput) (*models.User, error) {
	if in.UID == "" {
		return nil, apperror.ValidationFailed("uid", "Missing identity id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	user, ok := s.users[in.UID]
	if !ok {
		if in.Email == "" {
			return nil, apperror.ValidationFailed("email", "Email is required")
		}
		if s.emailTaken(in.Email, in.UID) {
			return nil, apperror.ValidationFailed("email", "Email already in use")
		}
		user = &models.User{
			ID:             primitive.NewObjectID(),
			UID:            in.UID,
			Email:          in.Email,
			Name:           in.Name,
			Bio:            strDeref(in.Bio),
			Headline:       strDeref(in.Headline),
			ProfilePicture: strDeref(in.ProfilePicture),
			CreatedAt:      now,
		}
		s.users[in.UID] = user
		s.seq[in.UID] = s.next
		s.next++
	} else {
		if in.Name != "" {
			user.Name = in.Name
		}
		if in.Bio != nil {
			user.Bio = *in.Bio
		}
		if in.Headline != nil {
			user.Headline = *in.Headline
		}
		if in.ProfilePicture != nil {
			user.ProfilePicture = *in.ProfilePicture
		}
	}

	user.IsProfileComplete = user.ProfileComplete()
	user.UpdatedAt = now

	cp := *user
	return &cp, nil
}

func (s *UserStore) GetByUID(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[uid]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	cp := *user
	return &cp, nil
}

func (s *UserStore) Update(_ context.Context, uid string, in store.UpdateUserInput) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[uid]
	if !ok {
		return nil, apperror.NotFound("User")
	}

	if in.Email != nil {
		if s.emailTaken(*in.Email, uid) {
			return nil, apperror.ValidationFailed("email", "Email already in use")
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Headline != nil {
		user.Headline = *in.Headline
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}
	user.IsProfileComplete = user.ProfileComplete()
	user.UpdatedAt = time.Now().UTC()

	cp := *user
	return &cp, nil
}

func (s *UserStore) CompleteProfile(_ context.Context, in store.CompleteProfileInput) (*models.User, error) {
	if in.Name == "" || in.Headline == "" || in.Bio == "" || in.ProfilePicture == "" {
		return nil, apperror.ValidationFailed("profile",
			"All fields are required: name, headline, bio, and profile picture")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[in.UID]
	if !ok {
		return nil, apperror.NotFound("User")
	}

	user.Name = in.Name
	user.Headline = in.Headline
	user.Bio = in.Bio
	user.ProfilePicture = in.ProfilePicture
	user.IsProfileComplete = true
	user.UpdatedAt = time.Now().UTC()

	cp := *user
	return &cp, nil
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		ordered = append(ordered, u)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return s.seq[ordered[i].UID] < s.seq[ordered[j].UID]
	})

	out := make([]models.User, 0, len(ordered))
	for _, u := range ordered {
		out = append(out, *u)
	}
	return out, nil
}

func (s *UserStore) SearchName(_ context.Context, query string, limit int) ([]models.User, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []models.User{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.User, 0)
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.seq[matched[i].UID] < s.seq[matched[j].UID]
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]models.User, 0, len(matched))
	for _, u := range matched {
		out = append(out, *u)
	}
	return out, nil
}

func (s *UserStore) emailTaken(email, exceptUID string) bool {
	for uid, u := range s.users {
		if uid != exceptUID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
