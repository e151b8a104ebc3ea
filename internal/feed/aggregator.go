package feed

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/pkg/logging"
	"github.com/picstream/picstream/pkg/telemetry"
)

// Aggregator assembles a user's timeline on read: followee ids from the
// user service, one batched post page from the post service, one batched
// like-status call against the like service, merged and cached. Feed
// availability is prioritized over completeness: any downstream failure
// degrades to an empty page, never an error.
type Aggregator struct {
	cache       *Cache
	users       *clients.UserClient
	posts       *clients.PostClient
	likes       *clients.LikeClient
	maxPageSize int
	logger      *zap.Logger
}

// NewAggregator creates a new feed aggregator
func NewAggregator(cache *Cache, users *clients.UserClient, posts *clients.PostClient, likes *clients.LikeClient, maxPageSize int) *Aggregator {
	return &Aggregator{
		cache:       cache,
		users:       users,
		posts:       posts,
		likes:       likes,
		maxPageSize: maxPageSize,
		logger:      logging.GetLogger().With(zap.String("component", "feed-aggregator")),
	}
}

// GetFeed returns one page of the user's timeline, reverse-chronological
// with ties broken by post id descending. A cache hit is returned verbatim,
// including possibly stale like status.
func (a *Aggregator) GetFeed(ctx context.Context, userID uuid.UUID, page, size int) *clients.PostPage {
	ctx, span := telemetry.StartSpan(ctx, "feed.get_feed")
	defer span.End()

	if page < 0 {
		page = 0
	}
	if size < 1 || size > a.maxPageSize {
		size = a.maxPageSize
	}

	if cached, ok := a.cache.GetPage(ctx, userID, page, size); ok {
		a.logger.Debug("Feed cache hit", zap.String("user_id", userID.String()))
		return cached
	}

	result := a.assemble(ctx, userID, page, size)

	a.cache.SetPage(ctx, userID, page, size, result)
	return result
}

func (a *Aggregator) assemble(ctx context.Context, userID uuid.UUID, page, size int) *clients.PostPage {
	empty := &clients.PostPage{Content: []clients.FeedPost{}, Page: page, Size: size}

	followingIDs, err := a.users.FollowingIDs(ctx, userID)
	if err != nil {
		a.logger.Warn("Feed degraded to empty page: followee lookup failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return empty
	}

	// Users see their own posts in their timeline
	authorIDs := append(followingIDs, userID)

	postPage, err := a.posts.FeedPage(ctx, authorIDs, page, size)
	if err != nil {
		a.logger.Warn("Feed degraded to empty page: post fetch failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return empty
	}
	if postPage.Content == nil {
		postPage.Content = []clients.FeedPost{}
	}

	if len(postPage.Content) > 0 {
		a.enrichLikeStatus(ctx, postPage.Content, userID)
	}

	return postPage
}

// enrichLikeStatus merges the user's like status into the page with one
// batched call. Posts absent from the response, and the whole page when the
// call fails, default to isLiked=false.
func (a *Aggregator) enrichLikeStatus(ctx context.Context, posts []clients.FeedPost, userID uuid.UUID) {
	postIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	status, err := a.likes.PostStatusBatch(ctx, postIDs, userID)
	if err != nil {
		a.logger.Warn("Skipping like-status enrichment",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	for i := range posts {
		posts[i].IsLiked = status[posts[i].ID]
	}
}
