package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxPostContentLength    = 1000
	MaxCommentContentLength = 500
)

// Engagement is one like or share entry embedded in a post. Uniqueness
// per user is enforced by the store, not by the schema.
type Engagement struct {
	UserID    string    `bson:"userId" json:"userId"`
	UserName  string    `bson:"userName" json:"userName"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type Comment struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Content      string             `bson:"content" json:"content"`
	AuthorID     string             `bson:"authorId" json:"authorId"`
	AuthorName   string             `bson:"authorName" json:"authorName"`
	AuthorAvatar string             `bson:"authorAvatar,omitempty" json:"authorAvatar,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MediaAttachment is owned by its post; attachments are never shared
// across posts.
type MediaAttachment struct {
	Type         string `bson:"type" json:"type"` // image, video, document, event
	URL          string `bson:"url" json:"url"`
	Name         string `bson:"name" json:"name"`
	PublicID     string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	Size         int64  `bson:"size,omitempty" json:"size,omitempty"`
	ResourceType string `bson:"resourceType,omitempty" json:"resourceType,omitempty"`
}

// Post embeds its engagement collections. The likeCount/commentCount/
// shareCount fields are denormalized and must equal the length of the
// matching collection after every mutation.
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PostID       string             `bson:"postId" json:"postId"`
	Content      string             `bson:"content" json:"content"`
	AuthorID     string             `bson:"authorId" json:"authorId"`
	AuthorName   string             `bson:"authorName" json:"authorName"` // snapshot, not kept in sync
	Media        []MediaAttachment  `bson:"media" json:"media"`
	Likes        []Engagement       `bson:"likes" json:"likes"`
	Comments     []Comment          `bson:"comments" json:"comments"`
	Shares       []Engagement       `bson:"shares" json:"shares"`
	LikeCount    int                `bson:"likeCount" json:"likeCount"`
	CommentCount int                `bson:"commentCount" json:"commentCount"`
	ShareCount   int                `bson:"shareCount" json:"shareCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports whether userID has an entry in the likes collection.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// SharedBy reports whether userID has an entry in the shares collection.
func (p *Post) SharedBy(userID string) bool {
	for _, s := range p.Shares {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
