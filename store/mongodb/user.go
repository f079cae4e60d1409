package mongodb

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// Upsert is keyed by the external identity id: update when the profile
// exists, insert otherwise. Profiles follow the original's
// load-then-save shape; the engagement stores are where the atomic
// update discipline matters.
func (s *UserStore) Upsert(ctx context.Context, in store.UpsertUserInput) (*models.User, error) {
	if in.UID == "" {
		return nil, apperror.ValidationFailed("uid", "Missing identity id")
	}

	now := time.Now().UTC()

	var existing models.User
	err := s.coll.FindOne(ctx, bson.M{"uid": in.UID}).Decode(&existing)
	if err != nil && !isNoDocuments(err) {
		return nil, storageErr("fetch user", err)
	}

	if isNoDocuments(err) {
		if in.Email == "" {
			return nil, apperror.ValidationFailed("email", "Email is required")
		}
		user := models.User{
			ID:             primitive.NewObjectID(),
			UID:            in.UID,
			Email:          in.Email,
			Name:           in.Name,
			Bio:            deref(in.Bio),
			Headline:       deref(in.Headline),
			ProfilePicture: deref(in.ProfilePicture),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		user.IsProfileComplete = user.ProfileComplete()
		if _, err := s.coll.InsertOne(ctx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperror.ValidationFailed("email", "Email already in use")
			}
			return nil, storageErr("create user", err)
		}
		return &user, nil
	}

	if in.Name != "" {
		existing.Name = in.Name
	}
	if in.Bio != nil {
		existing.Bio = *in.Bio
	}
	if in.Headline != nil {
		existing.Headline = *in.Headline
	}
	if in.ProfilePicture != nil {
		existing.ProfilePicture = *in.ProfilePicture
	}
	existing.IsProfileComplete = existing.ProfileComplete()
	existing.UpdatedAt = now

	if err := s.save(ctx, &existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *UserStore) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if isNoDocuments(err) {
		return nil, apperror.NotFound("User")
	}
	if err != nil {
		return nil, storageErr("fetch user", err)
	}
	return &user, nil
}

func (s *UserStore) Update(ctx context.Context, uid string, in store.UpdateUserInput) (*models.User, error) {
	user, err := s.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
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

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) CompleteProfile(ctx context.Context, in store.CompleteProfileInput) (*models.User, error) {
	if in.Name == "" || in.Headline == "" || in.Bio == "" || in.ProfilePicture == "" {
		return nil, apperror.ValidationFailed("profile",
			"All fields are required: name, headline, bio, and profile picture")
	}

	user, err := s.GetByUID(ctx, in.UID)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Headline = in.Headline
	user.Bio = in.Bio
	user.ProfilePicture = in.ProfilePicture
	user.IsProfileComplete = true
	user.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storageErr("list users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storageErr("decode users", err)
	}
	return users, nil
}

func (s *UserStore) SearchName(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	filter := bson.M{"name": bson.M{
		"$regex":   regexp.QuoteMeta(query),
		"$options": "i",
	}}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, storageErr("search users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storageErr("decode users", err)
	}
	return users, nil
}

func (s *UserStore) save(ctx context.Context, user *models.User) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"uid": user.UID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.ValidationFailed("email", "Email already in use")
		}
		return storageErr("save user", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
