package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the locally stored profile for an externally managed
// identity. UID is the opaque id issued by the identity provider and is
// immutable after creation.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UID               string             `bson:"uid" json:"uid"`
	Email             string             `bson:"email" json:"email"`
	Name              string             `bson:"name" json:"name"`
	Bio               string             `bson:"bio" json:"bio"`
	Headline          string             `bson:"headline" json:"headline"`
	ProfilePicture    string             `bson:"profilePicture" json:"profilePicture"`
	IsProfileComplete bool               `bson:"isProfileComplete" json:"isProfileComplete"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileComplete is the completeness criterion gating protected pages:
// name, headline and picture must all be present.
func (u *User) ProfileComplete() bool {
	return u.Name != "" && u.Headline != "" && u.ProfilePicture != ""
}
