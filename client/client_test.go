package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/apperror"
	"github.com/sachiny0106/LinkUp/client"
	"github.com/sachiny0106/LinkUp/routes"
	"github.com/sachiny0106/LinkUp/store/memstore"
)

func newTestServer(t *testing.T) (*client.Client, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := routes.Setup(routes.Deps{
		Posts:        memstore.NewPostStore(),
		Users:        memstore.NewUserStore(),
		Logger:       zap.NewNop(),
		ShareBaseURL: "https://linkup.example.com",
		RateLimit:    10000,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return client.New(srv.URL), srv
}

func TestClientPostLifecycle(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	post, err := c.CreatePost(ctx, client.CreatePostInput{
		Content:    "hello from the client",
		AuthorID:   "u1",
		AuthorName: "Ada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.PostID)

	got, err := c.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, "hello from the client", got.Content)

	updated, err := c.UpdatePost(ctx, post.PostID, "u1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	posts, err := c.ListPosts(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, c.DeletePost(ctx, post.PostID, "u1"))

	_, err = c.GetPost(ctx, post.PostID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestClientEngagementOperations(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	post, err := c.CreatePost(ctx, client.CreatePostInput{
		Content: "engage", AuthorID: "u1", AuthorName: "Ada",
	})
	require.NoError(t, err)

	like, err := c.ToggleLike(ctx, post.PostID, "u2", "Grace")
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	comment, err := c.AddComment(ctx, post.PostID, client.AddCommentInput{
		Content: "nice", AuthorID: "u2", AuthorName: "Grace",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, comment.CommentCount)

	share, err := c.Share(ctx, post.PostID, "u2", "Grace")
	require.NoError(t, err)
	assert.True(t, share.Shared)
	assert.Equal(t, 1, share.ShareCount)
	assert.Equal(t, "https://linkup.example.com/post/"+post.PostID, share.ShareURL)

	likes, err := c.Likes(ctx, post.PostID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	comments, err := c.Comments(ctx, post.PostID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	count, err := c.DeleteComment(ctx, post.PostID, comments[0].ID.Hex(), "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestClientErrorMapping(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	_, err := c.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = c.CreatePost(ctx, client.CreatePostInput{Content: "no author"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	post, err := c.CreatePost(ctx, client.CreatePostInput{
		Content: "mine", AuthorID: "u1", AuthorName: "Ada",
	})
	require.NoError(t, err)

	_, err = c.UpdatePost(ctx, post.PostID, "u2", "stolen")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestClientSearch(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	_, err := c.CreatePost(ctx, client.CreatePostInput{
		Content: "distributed systems rant", AuthorID: "u1", AuthorName: "Ada",
	})
	require.NoError(t, err)

	_, err = c.UpsertUser(ctx, client.UpsertUserInput{
		UID: "uid-1", Email: "sys@example.com", Name: "Systems Sam",
	})
	require.NoError(t, err)

	posts, err := c.SearchPosts(ctx, "systems")
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	users, err := c.SearchUsers(ctx, "systems")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	combined, err := c.Search(ctx, "systems")
	require.NoError(t, err)
	assert.Equal(t, 2, combined.Total)
	assert.Len(t, combined.Posts, 1)
	assert.Len(t, combined.Users, 1)
}

func TestClientUserOperations(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	user, err := c.UpsertUser(ctx, client.UpsertUserInput{
		UID: "uid-1", Email: "ada@example.com", Name: "Ada",
	})
	require.NoError(t, err)
	assert.False(t, user.IsProfileComplete)

	got, err := c.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = c.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
