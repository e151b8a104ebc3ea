package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstream/picstream/internal/clients"
)

// collaborators spins up one httptest server playing the user, post and
// like services for the aggregator to call
type collaborators struct {
	t            *testing.T
	followingIDs []uuid.UUID
	posts        []clients.FeedPost
	likedIDs     []uuid.UUID

	usersDown bool
	postsDown bool
	likesDown bool

	feedAuthorIDs []uuid.UUID
	feedCalls     int
}

func (f *collaborators) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		if f.usersDown {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/following/ids") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(f.followingIDs)
	})

	mux.HandleFunc("/posts/feed", func(w http.ResponseWriter, r *http.Request) {
		f.feedCalls++
		if f.postsDown {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		var authorIDs []uuid.UUID
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&authorIDs))
		f.feedAuthorIDs = authorIDs
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode(clients.PostPage{
			Content:    f.posts,
			Page:       page,
			Size:       size,
			TotalCount: int64(len(f.posts)),
		})
	})

	mux.HandleFunc("/likes/posts/status", func(w http.ResponseWriter, r *http.Request) {
		if f.likesDown {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		status := map[uuid.UUID]bool{}
		for _, id := range f.likedIDs {
			status[id] = true
		}
		json.NewEncoder(w).Encode(status)
	})

	return mux
}

func newTestAggregator(t *testing.T, f *collaborators, store Store) (*Aggregator, *httptest.Server) {
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	timeout := 2 * time.Second
	users := clients.NewUserClient(srv.URL, timeout)
	posts := clients.NewPostClient(srv.URL, timeout)
	likes := clients.NewLikeClient(srv.URL, timeout)

	cache := NewCache(store, users, testCacheConfig())
	return NewAggregator(cache, users, posts, likes, 50), srv
}

func TestGetFeedAssembles(t *testing.T) {
	followee := uuid.New()
	viewer := uuid.New()
	liked := uuid.New()
	f := &collaborators{
		t:            t,
		followingIDs: []uuid.UUID{followee},
		posts: []clients.FeedPost{
			{ID: liked, AuthorID: followee, Caption: "first"},
			{ID: uuid.New(), AuthorID: followee, Caption: "second"},
		},
		likedIDs: []uuid.UUID{liked},
	}

	agg, _ := newTestAggregator(t, f, nil)
	page := agg.GetFeed(context.Background(), viewer, 0, 20)

	require.Len(t, page.Content, 2)
	assert.Equal(t, int64(2), page.TotalCount)

	// The viewer's own id is appended to the author set
	assert.Contains(t, f.feedAuthorIDs, viewer)
	assert.Contains(t, f.feedAuthorIDs, followee)

	// Like status merged, absent ids default to false
	assert.True(t, page.Content[0].IsLiked)
	assert.False(t, page.Content[1].IsLiked)
}

func TestGetFeedClampsPageSize(t *testing.T) {
	f := &collaborators{t: t, posts: []clients.FeedPost{}}
	agg, _ := newTestAggregator(t, f, nil)

	page := agg.GetFeed(context.Background(), uuid.New(), -5, 9999)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 50, page.Size)
}

func TestGetFeedDegradesWhenUsersDown(t *testing.T) {
	f := &collaborators{t: t, usersDown: true}
	agg, _ := newTestAggregator(t, f, nil)

	page := agg.GetFeed(context.Background(), uuid.New(), 0, 20)
	require.NotNil(t, page)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(0), page.TotalCount)
}

func TestGetFeedDegradesWhenPostsDown(t *testing.T) {
	f := &collaborators{t: t, postsDown: true}
	agg, _ := newTestAggregator(t, f, nil)

	page := agg.GetFeed(context.Background(), uuid.New(), 0, 20)
	require.NotNil(t, page)
	assert.Empty(t, page.Content)
}

func TestGetFeedLikeFailureDefaultsFalse(t *testing.T) {
	followee := uuid.New()
	f := &collaborators{
		t:            t,
		followingIDs: []uuid.UUID{followee},
		posts:        []clients.FeedPost{{ID: uuid.New(), AuthorID: followee}},
		likesDown:    true,
	}

	agg, _ := newTestAggregator(t, f, nil)
	page := agg.GetFeed(context.Background(), uuid.New(), 0, 20)

	require.Len(t, page.Content, 1)
	assert.False(t, page.Content[0].IsLiked)
}

func TestGetFeedCacheHitSkipsAssembly(t *testing.T) {
	followee := uuid.New()
	viewer := uuid.New()
	f := &collaborators{
		t:            t,
		followingIDs: []uuid.UUID{followee},
		posts:        []clients.FeedPost{{ID: uuid.New(), AuthorID: followee}},
	}

	store := newFakeStore()
	agg, _ := newTestAggregator(t, f, store)

	first := agg.GetFeed(context.Background(), viewer, 0, 20)
	require.Len(t, first.Content, 1)
	assert.Equal(t, 1, f.feedCalls)

	// Second read is served from cache verbatim
	second := agg.GetFeed(context.Background(), viewer, 0, 20)
	require.Len(t, second.Content, 1)
	assert.Equal(t, first.Content[0].ID, second.Content[0].ID)
	assert.Equal(t, 1, f.feedCalls)
}

func TestGetFeedCacheWriteFailureNonFatal(t *testing.T) {
	followee := uuid.New()
	f := &collaborators{
		t:            t,
		followingIDs: []uuid.UUID{followee},
		posts:        []clients.FeedPost{{ID: uuid.New(), AuthorID: followee}},
	}

	store := newFakeStore()
	store.setErr = assert.AnError
	agg, _ := newTestAggregator(t, f, store)

	page := agg.GetFeed(context.Background(), uuid.New(), 0, 20)
	require.Len(t, page.Content, 1)
}

func TestGetFeedEmptyFollowSet(t *testing.T) {
	viewer := uuid.New()
	f := &collaborators{
		t:            t,
		followingIDs: []uuid.UUID{},
		posts:        []clients.FeedPost{{ID: uuid.New(), AuthorID: viewer}},
	}

	agg, _ := newTestAggregator(t, f, nil)
	page := agg.GetFeed(context.Background(), viewer, 0, 20)

	// Still queried with the viewer as sole author
	require.Len(t, f.feedAuthorIDs, 1)
	assert.Equal(t, viewer, f.feedAuthorIDs[0])
	require.Len(t, page.Content, 1)
}
