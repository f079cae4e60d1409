package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sachiny0106/LinkUp/client"
	"github.com/sachiny0106/LinkUp/models"
)

func seedEngagement(t *testing.T, c *client.Client, viewerID, viewerName string) (*client.EngagementState, *models.Post) {
	t.Helper()
	post, err := c.CreatePost(context.Background(), client.CreatePostInput{
		Content: "watch this space", AuthorID: "author", AuthorName: "Ada",
	})
	require.NoError(t, err)
	return client.NewEngagementState(c, post, viewerID, viewerName), post
}

func TestOptimisticLikeConfirmed(t *testing.T) {
	c, _ := newTestServer(t)
	state, _ := seedEngagement(t, c, "viewer", "Grace")

	result, err := state.ToggleLike(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StateConfirmed, result)

	view := state.Snapshot()
	assert.True(t, view.Liked)
	assert.Equal(t, 1, view.LikeCount)
	assert.False(t, view.Pending)

	// toggling back confirms the removal too
	result, err = state.ToggleLike(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StateConfirmed, result)
	view = state.Snapshot()
	assert.False(t, view.Liked)
	assert.Equal(t, 0, view.LikeCount)
}

func TestOptimisticLikeRolledBack(t *testing.T) {
	c, srv := newTestServer(t)
	state, _ := seedEngagement(t, c, "viewer", "Grace")

	srv.Close() // every request fails from here on

	result, err := state.ToggleLike(context.Background())
	require.Error(t, err)
	assert.Equal(t, client.StateRolledBack, result)

	view := state.Snapshot()
	assert.False(t, view.Liked)
	assert.Equal(t, 0, view.LikeCount)
}

func TestOptimisticCommentConfirmed(t *testing.T) {
	c, _ := newTestServer(t)
	state, _ := seedEngagement(t, c, "viewer", "Grace")

	result, comment, err := state.AddComment(context.Background(), "first!", "")
	require.NoError(t, err)
	assert.Equal(t, client.StateConfirmed, result)
	require.NotNil(t, comment)
	assert.False(t, comment.ID.IsZero())

	view := state.Snapshot()
	assert.Equal(t, 1, view.CommentCount)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "first!", view.Comments[0].Content)
	// the server copy replaced the local placeholder
	assert.False(t, view.Comments[0].CreatedAt.IsZero())
}

func TestOptimisticCommentRolledBack(t *testing.T) {
	c, srv := newTestServer(t)
	state, _ := seedEngagement(t, c, "viewer", "Grace")

	srv.Close()

	result, comment, err := state.AddComment(context.Background(), "lost", "")
	require.Error(t, err)
	assert.Equal(t, client.StateRolledBack, result)
	assert.Nil(t, comment)

	view := state.Snapshot()
	assert.Equal(t, 0, view.CommentCount)
	assert.Empty(t, view.Comments)
}

func TestOptimisticShare(t *testing.T) {
	c, _ := newTestServer(t)
	state, post := seedEngagement(t, c, "viewer", "Grace")

	result, shareURL, err := state.Share(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StateConfirmed, result)
	assert.Equal(t, "https://linkup.example.com/post/"+post.PostID, shareURL)
	assert.Equal(t, 1, state.Snapshot().ShareCount)

	// repeat share confirms without another increment
	result, _, err = state.Share(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.StateConfirmed, result)
	assert.Equal(t, 1, state.Snapshot().ShareCount)
}

func TestOptimisticShareRolledBack(t *testing.T) {
	c, srv := newTestServer(t)
	state, _ := seedEngagement(t, c, "viewer", "Grace")

	srv.Close()

	result, _, err := state.Share(context.Background())
	require.Error(t, err)
	assert.Equal(t, client.StateRolledBack, result)
	assert.Equal(t, 0, state.Snapshot().ShareCount)
}

// A reconcile landing while a comment request is in flight replaces the
// local list; the failure rollback must leave the reconciled comments
// untouched instead of truncating the tail.
func TestRollbackPreservesReconciledComments(t *testing.T) {
	requestStarted := make(chan struct{})
	releaseResponse := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requestStarted)
		<-releaseResponse
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"storage failure"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	state := client.NewEngagementState(c, &models.Post{PostID: "p1"}, "viewer", "Grace")

	type outcome struct {
		result client.ActionState
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, _, err := state.AddComment(context.Background(), "mine", "")
		done <- outcome{result, err}
	}()

	<-requestStarted
	state.Reconcile(&models.Post{
		PostID:       "p1",
		CommentCount: 1,
		Comments: []models.Comment{{
			ID:         primitive.NewObjectID(),
			Content:    "from another viewer",
			AuthorID:   "other",
			AuthorName: "Linus",
		}},
	})
	close(releaseResponse)

	out := <-done
	require.Error(t, out.err)
	assert.Equal(t, client.StateRolledBack, out.result)

	view := state.Snapshot()
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "from another viewer", view.Comments[0].Content)
	assert.Equal(t, 1, view.CommentCount)
}

// Reconcile replaces the local view wholesale with server state,
// including like membership derived from the collection.
func TestReconcile(t *testing.T) {
	c, _ := newTestServer(t)
	state, post := seedEngagement(t, c, "viewer", "Grace")
	ctx := context.Background()

	// another session engages with the post
	_, err := c.ToggleLike(ctx, post.PostID, "viewer", "Grace")
	require.NoError(t, err)
	_, err = c.ToggleLike(ctx, post.PostID, "other", "Linus")
	require.NoError(t, err)
	_, err = c.AddComment(ctx, post.PostID, client.AddCommentInput{
		Content: "news", AuthorID: "other", AuthorName: "Linus",
	})
	require.NoError(t, err)

	require.NoError(t, state.Refresh(ctx))

	view := state.Snapshot()
	assert.True(t, view.Liked)
	assert.Equal(t, 2, view.LikeCount)
	assert.Equal(t, 1, view.CommentCount)
	require.Len(t, view.Comments, 1)
}

func TestPollerReconcilesTrackedPosts(t *testing.T) {
	c, _ := newTestServer(t)
	state, post := seedEngagement(t, c, "viewer", "Grace")
	ctx := context.Background()

	_, err := c.ToggleLike(ctx, post.PostID, "other", "Linus")
	require.NoError(t, err)

	polled := make(chan []models.Post, 1)
	poller := client.NewPoller(c,
		client.WithInterval(10*time.Millisecond),
		client.WithOnPosts(func(posts []models.Post) {
			select {
			case polled <- posts:
			default:
			}
		}))
	poller.Track(state)
	poller.Start(ctx)
	defer poller.Stop()

	select {
	case posts := <-polled:
		require.Len(t, posts, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never delivered a feed")
	}

	// tracked state was reconciled with the server's count
	assert.Eventually(t, func() bool {
		return state.Snapshot().LikeCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPollerStop(t *testing.T) {
	c, _ := newTestServer(t)

	poller := client.NewPoller(c, client.WithInterval(10*time.Millisecond))
	poller.Start(context.Background())
	poller.Stop() // must not hang

	// calling Stop again is harmless
	poller.Stop()
}

func TestPollerStopWithoutStart(t *testing.T) {
	c, _ := newTestServer(t)

	poller := client.NewPoller(c)
	poller.Stop() // must return immediately
}

func TestPollerReportsErrors(t *testing.T) {
	c, srv := newTestServer(t)
	srv.Close()

	errs := make(chan error, 1)
	poller := client.NewPoller(c,
		client.WithInterval(10*time.Millisecond),
		client.WithOnError(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}))
	poller.Start(context.Background())
	defer poller.Stop()

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never reported the failure")
	}
}
