package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/internal/counter"
	"github.com/picstream/picstream/internal/db"
	"github.com/picstream/picstream/internal/feed"
	"github.com/picstream/picstream/internal/models"
	"github.com/picstream/picstream/pkg/logging"
)

const (
	maxCaptionLength = 2000
	maxMediaItems    = 10
)

// PostAPI serves the post service surface: post CRUD, per-author listings,
// the batch feed-page endpoint consumed by the feed aggregator, and the
// counter endpoints hit by the like and comment services.
type PostAPI struct {
	posts      *db.PostRepository
	userClient *clients.UserClient
	likeClient *clients.LikeClient
	propagator *counter.Propagator
	feedCache  *feed.Cache
	logger     *zap.Logger
}

// NewPostAPI creates a new post API
func NewPostAPI(repo *db.Repository, userClient *clients.UserClient, likeClient *clients.LikeClient, propagator *counter.Propagator, feedCache *feed.Cache) *PostAPI {
	return &PostAPI{
		posts:      db.NewPostRepository(repo),
		userClient: userClient,
		likeClient: likeClient,
		propagator: propagator,
		feedCache:  feedCache,
		logger:     logging.GetLogger().With(zap.String("component", "post-api")),
	}
}

type createPostRequest struct {
	Caption   string   `json:"caption"`
	Location  string   `json:"location"`
	MediaURLs []string `json:"mediaUrls"`
}

// CreatePost handles POST /posts
func (p *PostAPI) CreatePost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}
	if len(req.MediaURLs) == 0 || len(req.MediaURLs) > maxMediaItems {
		respondError(c, Validationf("post must have 1-%d media items", maxMediaItems))
		return
	}
	if len(req.Caption) > maxCaptionLength {
		respondError(c, Validationf("caption exceeds %d characters", maxCaptionLength))
		return
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  actor,
		Caption:   req.Caption,
		Location:  req.Location,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, url := range req.MediaURLs {
		url = strings.TrimSpace(url)
		if url == "" {
			respondError(c, Validationf("media url must not be empty"))
			return
		}
		post.Media = append(post.Media, models.PostMedia{
			ID:           uuid.New(),
			PostID:       post.ID,
			URL:          url,
			DisplayOrder: i,
		})
	}

	if err := p.posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}

	// Secondary effects: counter delta to the user service, then dropping
	// stale cached feed pages for the author and their followers
	ctx := c.Request.Context()
	p.propagator.Apply(ctx, counter.Delta{Entity: counter.EntityUser, ID: actor, Field: counter.FieldPosts, Sign: 1})
	p.feedCache.InvalidateUser(ctx, actor)
	p.feedCache.InvalidateFollowers(ctx, actor)

	p.logger.Info("Created post",
		zap.String("post_id", post.ID.String()),
		zap.String("author_id", actor.String()))
	c.JSON(http.StatusCreated, toFeedPost(post, nil))
}

// GetPost handles GET /posts/:id. Author profile and viewer like status are
// best-effort enrichments.
func (p *PostAPI) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := p.posts.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, NotFoundf("post not found: %s", id))
		return
	}

	out := toFeedPost(post, p.fetchAuthor(c, post.AuthorID))
	if viewer, ok := actorID(c); ok {
		status, err := p.likeClient.PostStatusBatch(c.Request.Context(), []uuid.UUID{post.ID}, viewer)
		if err != nil {
			p.logger.Warn("Like status enrichment failed", zap.Error(err))
		} else {
			out.IsLiked = status[post.ID]
		}
	}
	c.JSON(http.StatusOK, out)
}

func (p *PostAPI) fetchAuthor(c *gin.Context, authorID uuid.UUID) *clients.Profile {
	author, err := p.userClient.GetProfile(c.Request.Context(), authorID)
	if err != nil {
		p.logger.Warn("Author lookup failed",
			zap.String("author_id", authorID.String()),
			zap.Error(err))
		return nil
	}
	return author
}

// PostExists handles GET /posts/:id/exists, the existence pre-check used by
// the comment and like services
func (p *PostAPI) PostExists(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exists, err := p.posts.Exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

type updatePostRequest struct {
	Caption  *string `json:"caption"`
	Location *string `json:"location"`
}

// UpdatePost handles PATCH /posts/:id. Media is immutable after creation.
func (p *PostAPI) UpdatePost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}

	post, err := p.posts.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, NotFoundf("post not found: %s", id))
		return
	}
	if post.AuthorID != actor {
		respondError(c, Unauthorizedf("only the author can edit this post"))
		return
	}

	if req.Caption != nil {
		if len(*req.Caption) > maxCaptionLength {
			respondError(c, Validationf("caption exceeds %d characters", maxCaptionLength))
			return
		}
		post.Caption = *req.Caption
	}
	if req.Location != nil {
		post.Location = *req.Location
	}
	post.UpdatedAt = time.Now().UTC()

	if err := p.posts.Update(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFeedPost(post, nil))
}

// DeletePost handles DELETE /posts/:id
func (p *PostAPI) DeletePost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := p.posts.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, NotFoundf("post not found: %s", id))
		return
	}
	if post.AuthorID != actor {
		respondError(c, Unauthorizedf("only the author can delete this post"))
		return
	}

	if err := p.posts.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	p.propagator.Apply(ctx, counter.Delta{Entity: counter.EntityUser, ID: actor, Field: counter.FieldPosts, Sign: -1})
	p.feedCache.InvalidateUser(ctx, actor)
	p.feedCache.InvalidateFollowers(ctx, actor)

	p.logger.Info("Deleted post", zap.String("post_id", id.String()))
	c.Status(http.StatusNoContent)
}

// ListUserPosts handles GET /users/:id/posts
func (p *PostAPI) ListUserPosts(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := paging(c, 50)

	posts, total, err := p.posts.ByAuthorPage(c.Request.Context(), authorID, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}

	author := p.fetchAuthor(c, authorID)
	content := make([]clients.FeedPost, 0, len(posts))
	for _, post := range posts {
		content = append(content, toFeedPost(post, author))
	}
	p.enrichLikeStatus(c, content)
	c.JSON(http.StatusOK, PagedResponse{Content: content, Page: page, Size: size, TotalCount: total})
}

// FeedPage handles POST /posts/feed?page=&size=, the batch read used by the
// feed aggregator. The body is the list of author ids. Ordering is newest
// first with id as the tiebreaker. When the whole author batch lookup fails
// posts are returned without profiles; a post whose author is individually
// missing is dropped from the page.
func (p *PostAPI) FeedPage(c *gin.Context) {
	var authorIDs []uuid.UUID
	if err := c.ShouldBindJSON(&authorIDs); err != nil {
		respondError(c, Validationf("body must be a list of author ids"))
		return
	}
	page, size := paging(c, 50)

	if len(authorIDs) == 0 {
		c.JSON(http.StatusOK, clients.PostPage{Content: []clients.FeedPost{}, Page: page, Size: size})
		return
	}

	posts, total, err := p.posts.FeedPage(c.Request.Context(), authorIDs, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}

	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		if _, dup := seen[post.AuthorID]; !dup {
			seen[post.AuthorID] = struct{}{}
			ids = append(ids, post.AuthorID)
		}
	}

	content := make([]clients.FeedPost, 0, len(posts))
	profiles, err := p.userClient.GetProfiles(c.Request.Context(), ids)
	if err != nil {
		p.logger.Warn("Author batch lookup failed", zap.Error(err))
		for _, post := range posts {
			content = append(content, toFeedPost(post, nil))
		}
	} else {
		for _, post := range posts {
			author, found := profiles[post.AuthorID]
			if !found {
				continue
			}
			content = append(content, toFeedPost(post, author))
		}
	}

	c.JSON(http.StatusOK, clients.PostPage{Content: content, Page: page, Size: size, TotalCount: total})
}

func (p *PostAPI) enrichLikeStatus(c *gin.Context, posts []clients.FeedPost) {
	viewer, ok := actorID(c)
	if !ok || len(posts) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	status, err := p.likeClient.PostStatusBatch(c.Request.Context(), ids, viewer)
	if err != nil {
		p.logger.Warn("Like status enrichment failed", zap.Error(err))
		return
	}
	for i := range posts {
		posts[i].IsLiked = status[posts[i].ID]
	}
}

// AdjustLikesCount handles POST /posts/:id/likes/:op
func (p *PostAPI) AdjustLikesCount(c *gin.Context) {
	p.adjustCounter(c, "likes_count")
}

// AdjustCommentsCount handles POST /posts/:id/comments/:op
func (p *PostAPI) AdjustCommentsCount(c *gin.Context) {
	p.adjustCounter(c, "comments_count")
}

func (p *PostAPI) adjustCounter(c *gin.Context, column string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	delta, ok := counterOp(c)
	if !ok {
		return
	}
	if err := p.posts.AdjustCounter(c.Request.Context(), id, column, delta); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
