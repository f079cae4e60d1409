// Package mongodb implements the store interfaces over MongoDB.
//
// Engagement mutations are single guarded document updates: the filter
// asserts whether the acting user's entry is present, and the paired
// $inc only runs when that filter matched. The counter therefore stays
// equal to the collection length without a load-modify-save cycle, and
// concurrent toggles from two users cannot lose each other's writes.
package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sachiny0106/LinkUp/apperror"
)

const (
	postsCollection = "posts"
	usersCollection = "users"
)

type Store struct {
	Posts *PostStore
	Users *UserStore
}

func New(db *mongo.Database) *Store {
	return &Store{
		Posts: NewPostStore(db),
		Users: NewUserStore(db),
	}
}

// EnsureIndexes creates the unique indexes the stores rely on: one
// document per postId, one profile per uid, one profile per email.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(postsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "postId", Value: 1}},
		Options: uniqueIndex(),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: uniqueIndex()},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: uniqueIndex()},
	})
	return err
}

func uniqueIndex() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

func storageErr(op string, err error) error {
	return apperror.Upstream("storage failure during "+op, err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
