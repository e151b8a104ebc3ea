package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/internal/counter"
	"github.com/picstream/picstream/internal/db"
	"github.com/picstream/picstream/internal/models"
	"github.com/picstream/picstream/internal/notify"
	"github.com/picstream/picstream/pkg/logging"
)

// LikeAPI serves the like service surface: the reaction ledger for posts
// and comments plus the batch status endpoints other services enrich with.
// The ledger rows are the source of truth; the counters on posts, comments
// and users are downstream mirrors fed through the propagator.
type LikeAPI struct {
	likes      *db.LikeRepository
	postClient *clients.PostClient
	propagator *counter.Propagator
	publisher  *notify.Publisher
	logger     *zap.Logger
}

// NewLikeAPI creates a new like API
func NewLikeAPI(repo *db.Repository, postClient *clients.PostClient, propagator *counter.Propagator, publisher *notify.Publisher) *LikeAPI {
	return &LikeAPI{
		likes:      db.NewLikeRepository(repo),
		postClient: postClient,
		propagator: propagator,
		publisher:  publisher,
		logger:     logging.GetLogger().With(zap.String("component", "like-api")),
	}
}

// LikePost handles POST /likes/posts/:id
func (a *LikeAPI) LikePost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Pre-check mirrors comment creation: a definitive miss rejects, an
	// unreachable post service does not block the like
	exists, err := a.postClient.Exists(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			respondError(c, NotFoundf("post not found: %s", postID))
			return
		}
		a.logger.Warn("Post existence check unavailable, proceeding",
			zap.String("post_id", postID.String()),
			zap.Error(err))
	} else if !exists {
		respondError(c, NotFoundf("post not found: %s", postID))
		return
	}

	already, err := a.likes.PostLikeExists(c.Request.Context(), postID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if already {
		respondError(c, Conflictf("post already liked"))
		return
	}

	like := &models.PostLike{PostID: postID, UserID: actor, CreatedAt: time.Now().UTC()}
	if err := a.likes.CreatePostLike(c.Request.Context(), like); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	a.propagator.Apply(ctx, counter.Delta{Entity: counter.EntityPost, ID: postID, Field: counter.FieldLikes, Sign: 1})
	a.notifyPostOwner(c, actor, postID)

	c.Status(http.StatusNoContent)
}

func (a *LikeAPI) notifyPostOwner(c *gin.Context, actor, postID uuid.UUID) {
	post, err := a.postClient.GetPost(c.Request.Context(), postID)
	if err != nil {
		a.logger.Warn("Post owner lookup failed, skipping notification",
			zap.String("post_id", postID.String()),
			zap.Error(err))
		return
	}
	a.publisher.Publish(c.Request.Context(), notify.NewEvent(notify.TypeLike, actor, post.AuthorID, postID))
}

// UnlikePost handles DELETE /likes/posts/:id
func (a *LikeAPI) UnlikePost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	removed, err := a.likes.DeletePostLike(c.Request.Context(), postID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, NotFoundf("post not liked"))
		return
	}

	a.propagator.Apply(c.Request.Context(), counter.Delta{Entity: counter.EntityPost, ID: postID, Field: counter.FieldLikes, Sign: -1})
	c.Status(http.StatusNoContent)
}

// LikeComment handles POST /likes/comments/:id
func (a *LikeAPI) LikeComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	already, err := a.likes.CommentLikeExists(c.Request.Context(), commentID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if already {
		respondError(c, Conflictf("comment already liked"))
		return
	}

	like := &models.CommentLike{CommentID: commentID, UserID: actor, CreatedAt: time.Now().UTC()}
	if err := a.likes.CreateCommentLike(c.Request.Context(), like); err != nil {
		respondError(c, err)
		return
	}

	a.propagator.Apply(c.Request.Context(), counter.Delta{Entity: counter.EntityComment, ID: commentID, Field: counter.FieldLikes, Sign: 1})
	c.Status(http.StatusNoContent)
}

// UnlikeComment handles DELETE /likes/comments/:id
func (a *LikeAPI) UnlikeComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	removed, err := a.likes.DeleteCommentLike(c.Request.Context(), commentID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, NotFoundf("comment not liked"))
		return
	}

	a.propagator.Apply(c.Request.Context(), counter.Delta{Entity: counter.EntityComment, ID: commentID, Field: counter.FieldLikes, Sign: -1})
	c.Status(http.StatusNoContent)
}

// PostLikeStatus handles GET /likes/posts/:id, the viewer's single status
func (a *LikeAPI) PostLikeStatus(c *gin.Context) {
	a.likeStatus(c, a.likes.PostLikeExists)
}

// CommentLikeStatus handles GET /likes/comments/:id
func (a *LikeAPI) CommentLikeStatus(c *gin.Context) {
	a.likeStatus(c, a.likes.CommentLikeExists)
}

func (a *LikeAPI) likeStatus(c *gin.Context, exists func(ctx context.Context, subjectID, userID uuid.UUID) (bool, error)) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	subjectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, err := exists(c.Request.Context(), subjectID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// PostStatusBatch handles POST /likes/posts/status?userId=. The body is a
// list of post ids; the response maps only the liked ids to true, so
// callers default everything absent to false.
func (a *LikeAPI) PostStatusBatch(c *gin.Context) {
	a.statusBatch(c, a.likes.LikedPostIDs)
}

// CommentStatusBatch handles POST /likes/comments/status?userId=
func (a *LikeAPI) CommentStatusBatch(c *gin.Context) {
	a.statusBatch(c, a.likes.LikedCommentIDs)
}

func (a *LikeAPI) statusBatch(c *gin.Context, fetch func(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error)) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		respondError(c, Validationf("userId is required"))
		return
	}

	var ids []uuid.UUID
	if err := c.ShouldBindJSON(&ids); err != nil {
		respondError(c, Validationf("body must be a list of ids"))
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusOK, map[uuid.UUID]bool{})
		return
	}

	liked, err := fetch(c.Request.Context(), ids, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := make(map[uuid.UUID]bool, len(liked))
	for _, id := range liked {
		status[id] = true
	}
	c.JSON(http.StatusOK, status)
}
