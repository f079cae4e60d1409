package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/models"
	"github.com/sachiny0106/LinkUp/store"
)

var errConcurrentToggle = errors.New("like state kept changing between retries")

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{coll: db.Collection(postsCollection)}
}

func (s *PostStore) Create(ctx context.Context, in store.CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if err := validatePostInput(content, in.AuthorID, in.AuthorName); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:         primitive.NewObjectID(),
		PostID:     uuid.NewString(),
		Content:    content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Media:      in.Media,
		Likes:      []models.Engagement{},
		Comments:   []models.Comment{},
		Shares:     []models.Engagement{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if post.Media == nil {
		post.Media = []models.MediaAttachment{}
	}

	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return nil, storageErr("create post", err)
	}
	return &post, nil
}

func (s *PostStore) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"postId": postID}).Decode(&post)
	if isNoDocuments(err) {
		return nil, apperror.NotFound("Post")
	}
	if err != nil {
		return nil, storageErr("fetch post", err)
	}
	normalize(&post)
	return &post, nil
}

func (s *PostStore) List(ctx context.Context, opts store.ListOptions) ([]models.Post, error) {
	filter := bson.M{}
	if opts.AuthorID != "" {
		filter["authorId"] = opts.AuthorID
	}

	limit := opts.Limit
	if limit <= 0 || limit > store.DefaultListLimit {
		limit = store.DefaultListLimit
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, storageErr("list posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, storageErr("decode posts", err)
	}
	for i := range posts {
		normalize(&posts[i])
	}
	return posts, nil
}

func (s *PostStore) UpdateContent(ctx context.Context, postID, userID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLength {
		return nil, apperror.ValidationFailed("content", "Post content exceeds maximum length")
	}

	res := s.coll.FindOneAndUpdate(ctx,
		bson.M{"postId": postID, "authorId": userID},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var post models.Post
	err := res.Decode(&post)
	if isNoDocuments(err) {
		return nil, s.missingOrForbidden(ctx, postID, "Not authorized to edit this post")
	}
	if err != nil {
		return nil, storageErr("update post", err)
	}
	normalize(&post)
	return &post, nil
}

func (s *PostStore) Delete(ctx context.Context, postID, userID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"postId": postID, "authorId": userID})
	if err != nil {
		return storageErr("delete post", err)
	}
	if res.DeletedCount == 0 {
		return s.missingOrForbidden(ctx, postID, "Not authorized to delete this post")
	}
	return nil
}

// ToggleLike flips the acting user's like with two guarded updates: the
// first matches only when the like exists (and removes it), the second
// only when it does not (and appends it). When neither matches the post
// is either gone or its like state flipped concurrently; one retry
// resolves the latter.
func (s *PostStore) ToggleLike(ctx context.Context, postID, userID, userName string) (*store.LikeResult, error) {
	if userID == "" || userName == "" {
		return nil, apperror.ValidationFailed("userId", "Missing user information")
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < 2; attempt++ {
		var post models.Post

		err := s.coll.FindOneAndUpdate(ctx,
			bson.M{"postId": postID, "likes.userId": userID},
			bson.M{
				"$pull": bson.M{"likes": bson.M{"userId": userID}},
				"$inc":  bson.M{"likeCount": -1},
			},
			after,
		).Decode(&post)
		if err == nil {
			normalize(&post)
			return &store.LikeResult{Liked: false, LikeCount: post.LikeCount, Likes: post.Likes}, nil
		}
		if !isNoDocuments(err) {
			return nil, storageErr("toggle like", err)
		}

		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"postId": postID, "likes.userId": bson.M{"$ne": userID}},
			bson.M{
				"$push": bson.M{"likes": models.Engagement{
					UserID:    userID,
					UserName:  userName,
					Timestamp: time.Now().UTC(),
				}},
				"$inc": bson.M{"likeCount": 1},
			},
			after,
		).Decode(&post)
		if err == nil {
			normalize(&post)
			return &store.LikeResult{Liked: true, LikeCount: post.LikeCount, Likes: post.Likes}, nil
		}
		if !isNoDocuments(err) {
			return nil, storageErr("toggle like", err)
		}

		if err := s.exists(ctx, postID); err != nil {
			return nil, err
		}
	}
	return nil, apperror.Upstream("Failed to toggle like", errConcurrentToggle)
}

func (s *PostStore) AddComment(ctx context.Context, postID string, in store.CommentInput) (*store.CommentResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.AuthorID == "" || in.AuthorName == "" {
		return nil, apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentContentLength {
		return nil, apperror.ValidationFailed("content", "Comment exceeds maximum length")
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

	var post models.Post
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"postId": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$inc":  bson.M{"commentCount": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if isNoDocuments(err) {
		return nil, apperror.NotFound("Post")
	}
	if err != nil {
		return nil, storageErr("add comment", err)
	}
	normalize(&post)
	return &store.CommentResult{Comment: comment, CommentCount: post.CommentCount}, nil
}

func (s *PostStore) DeleteComment(ctx context.Context, postID, commentID, userID string) (int, error) {
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return 0, apperror.NotFound("Comment")
	}

	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == cid {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return 0, apperror.NotFound("Comment")
	}
	if comment.AuthorID != userID && post.AuthorID != userID {
		return 0, apperror.Forbidden("Not authorized to delete this comment")
	}

	var updated models.Post
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"postId": postID, "comments._id": cid},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": cid}},
			"$inc":  bson.M{"commentCount": -1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if isNoDocuments(err) {
		// removed concurrently between the read and the update
		return 0, apperror.NotFound("Comment")
	}
	if err != nil {
		return 0, storageErr("delete comment", err)
	}
	normalize(&updated)
	return updated.CommentCount, nil
}

func (s *PostStore) Share(ctx context.Context, postID, userID, userName string) (*store.ShareResult, error) {
	if userID == "" || userName == "" {
		return nil, apperror.ValidationFailed("userId", "Missing user information")
	}

	var post models.Post
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"postId": postID, "shares.userId": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"shares": models.Engagement{
				UserID:    userID,
				UserName:  userName,
				Timestamp: time.Now().UTC(),
			}},
			"$inc": bson.M{"shareCount": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == nil {
		normalize(&post)
		return &store.ShareResult{Shared: true, ShareCount: post.ShareCount}, nil
	}
	if !isNoDocuments(err) {
		return nil, storageErr("share post", err)
	}

	// Either the post is gone or the user already shared it; a repeat
	// share is a no-op that still succeeds.
	existing, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &store.ShareResult{Shared: true, ShareCount: existing.ShareCount}, nil
}

func (s *PostStore) Likes(ctx context.Context, postID string) ([]models.Engagement, error) {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *PostStore) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *PostStore) SearchContent(ctx context.Context, query string, limit int) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Post{}, nil
	}

	filter := bson.M{"content": bson.M{
		"$regex":   regexp.QuoteMeta(query),
		"$options": "i",
	}}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, storageErr("search posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, storageErr("decode posts", err)
	}
	for i := range posts {
		normalize(&posts[i])
	}
	return posts, nil
}

func (s *PostStore) exists(ctx context.Context, postID string) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{"postId": postID})
	if err != nil {
		return storageErr("fetch post", err)
	}
	if count == 0 {
		return apperror.NotFound("Post")
	}
	return nil
}

func (s *PostStore) missingOrForbidden(ctx context.Context, postID, forbiddenMsg string) error {
	if err := s.exists(ctx, postID); err != nil {
		return err
	}
	return apperror.Forbidden(forbiddenMsg)
}

// normalize floors the denormalized counters at zero and replaces nil
// collections with empty ones so responses always carry arrays.
func normalize(p *models.Post) {
	if p.Likes == nil {
		p.Likes = []models.Engagement{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	if p.Shares == nil {
		p.Shares = []models.Engagement{}
	}
	if p.Media == nil {
		p.Media = []models.MediaAttachment{}
	}
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	if p.CommentCount < 0 {
		p.CommentCount = 0
	}
	if p.ShareCount < 0 {
		p.ShareCount = 0
	}
}

func validatePostInput(content, authorID, authorName string) error {
	if content == "" || authorID == "" || authorName == "" {
		return apperror.ValidationFailed("content", "Missing required fields")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLength {
		return apperror.ValidationFailed("content", "Post content exceeds maximum length")
	}
	return nil
}
