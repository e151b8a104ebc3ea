package api

import (
	"errors"
	"net/http"
	"strings"
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

const maxCommentLength = 1000

// CommentAPI serves the comment service surface. Comments reference posts
// owned by the post service; the reference is checked at creation time and
// never enforced afterwards, so a comment may outlive its post's visibility.
type CommentAPI struct {
	comments   *db.CommentRepository
	postClient *clients.PostClient
	userClient *clients.UserClient
	likeClient *clients.LikeClient
	propagator *counter.Propagator
	publisher  *notify.Publisher
	logger     *zap.Logger
}

// NewCommentAPI creates a new comment API
func NewCommentAPI(repo *db.Repository, postClient *clients.PostClient, userClient *clients.UserClient, likeClient *clients.LikeClient, propagator *counter.Propagator, publisher *notify.Publisher) *CommentAPI {
	return &CommentAPI{
		comments:   db.NewCommentRepository(repo),
		postClient: postClient,
		userClient: userClient,
		likeClient: likeClient,
		propagator: propagator,
		publisher:  publisher,
		logger:     logging.GetLogger().With(zap.String("component", "comment-api")),
	}
}

type createCommentRequest struct {
	PostID   uuid.UUID  `json:"postId"`
	ParentID *uuid.UUID `json:"parentId"`
	Content  string     `json:"content"`
}

// CreateComment handles POST /comments
func (a *CommentAPI) CreateComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || len(req.Content) > maxCommentLength {
		respondError(c, Validationf("content must be 1-%d characters", maxCommentLength))
		return
	}
	if req.PostID == uuid.Nil {
		respondError(c, Validationf("postId is required"))
		return
	}

	// Existence pre-check against the post service. A definitive miss
	// rejects the comment; an unreachable post service does not.
	exists, err := a.postClient.Exists(c.Request.Context(), req.PostID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			respondError(c, NotFoundf("post not found: %s", req.PostID))
			return
		}
		a.logger.Warn("Post existence check unavailable, proceeding",
			zap.String("post_id", req.PostID.String()),
			zap.Error(err))
	} else if !exists {
		respondError(c, NotFoundf("post not found: %s", req.PostID))
		return
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = a.comments.GetActiveByID(c.Request.Context(), *req.ParentID)
		if err != nil {
			respondError(c, err)
			return
		}
		if parent == nil {
			respondError(c, NotFoundf("parent comment not found: %s", *req.ParentID))
			return
		}
		if parent.PostID != req.PostID {
			respondError(c, Validationf("parent comment belongs to a different post"))
			return
		}
		if parent.ParentID != nil {
			respondError(c, Validationf("replies cannot be nested"))
			return
		}
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    req.PostID,
		UserID:    actor,
		ParentID:  req.ParentID,
		Content:   req.Content,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.comments.Create(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	a.propagator.Apply(ctx, counter.Delta{Entity: counter.EntityPost, ID: req.PostID, Field: counter.FieldComments, Sign: 1})
	if parent != nil {
		// Replies count lives in this service
		if err := a.comments.AdjustCounter(ctx, parent.ID, "replies_count", 1); err != nil {
			a.logger.Warn("Replies count adjustment failed", zap.Error(err))
		}
	}
	a.notifyPostOwner(c, comment)

	a.logger.Info("Created comment",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", req.PostID.String()))
	c.JSON(http.StatusCreated, toCommentResponse(comment, nil, false))
}

// notifyPostOwner publishes a comment notification to the post author,
// best-effort: an unreachable post service just drops the notification
func (a *CommentAPI) notifyPostOwner(c *gin.Context, comment *models.Comment) {
	post, err := a.postClient.GetPost(c.Request.Context(), comment.PostID)
	if err != nil {
		a.logger.Warn("Post owner lookup failed, skipping notification",
			zap.String("post_id", comment.PostID.String()),
			zap.Error(err))
		return
	}
	a.publisher.Publish(c.Request.Context(), notify.NewEvent(notify.TypeComment, comment.UserID, post.AuthorID, comment.PostID))
}

// GetComment handles GET /comments/:id
func (a *CommentAPI) GetComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := a.comments.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if comment == nil {
		respondError(c, NotFoundf("comment not found: %s", id))
		return
	}

	user := a.fetchProfile(c, comment.UserID)
	isLiked := false
	if viewer, ok := actorID(c); ok {
		status, err := a.likeClient.CommentStatusBatch(c.Request.Context(), []uuid.UUID{comment.ID}, viewer)
		if err != nil {
			a.logger.Warn("Like status enrichment failed", zap.Error(err))
		} else {
			isLiked = status[comment.ID]
		}
	}
	c.JSON(http.StatusOK, toCommentResponse(comment, user, isLiked))
}

func (a *CommentAPI) fetchProfile(c *gin.Context, userID uuid.UUID) *clients.Profile {
	profile, err := a.userClient.GetProfile(c.Request.Context(), userID)
	if err != nil {
		a.logger.Warn("Profile lookup failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}
	return profile
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateComment handles PATCH /comments/:id
func (a *CommentAPI) UpdateComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || len(req.Content) > maxCommentLength {
		respondError(c, Validationf("content must be 1-%d characters", maxCommentLength))
		return
	}

	comment, err := a.comments.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if comment == nil {
		respondError(c, NotFoundf("comment not found: %s", id))
		return
	}
	if comment.UserID != actor {
		respondError(c, Unauthorizedf("only the author can edit this comment"))
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = time.Now().UTC()
	if err := a.comments.Update(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(comment, nil, false))
}

// DeleteComment handles DELETE /comments/:id
func (a *CommentAPI) DeleteComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := a.comments.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if comment == nil {
		respondError(c, NotFoundf("comment not found: %s", id))
		return
	}
	if comment.UserID != actor {
		respondError(c, Unauthorizedf("only the author can delete this comment"))
		return
	}

	if err := a.comments.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	a.propagator.Apply(ctx, counter.Delta{Entity: counter.EntityPost, ID: comment.PostID, Field: counter.FieldComments, Sign: -1})
	if comment.ParentID != nil {
		if err := a.comments.AdjustCounter(ctx, *comment.ParentID, "replies_count", -1); err != nil {
			a.logger.Warn("Replies count adjustment failed", zap.Error(err))
		}
	}

	c.Status(http.StatusNoContent)
}

// ListPostComments handles GET /posts/:id/comments, top-level comments
// oldest first
func (a *CommentAPI) ListPostComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := paging(c, 50)

	comments, total, err := a.comments.TopLevelByPost(c.Request.Context(), postID, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}
	a.respondCommentPage(c, comments, page, size, total)
}

// ListReplies handles GET /comments/:id/replies
func (a *CommentAPI) ListReplies(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, size := paging(c, 50)

	comments, total, err := a.comments.RepliesByParent(c.Request.Context(), parentID, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}
	a.respondCommentPage(c, comments, page, size, total)
}

// respondCommentPage enriches a comment page with author profiles and the
// viewer's like status, both best-effort, and writes the response
func (a *CommentAPI) respondCommentPage(c *gin.Context, comments []*models.Comment, page, size int, total int64) {
	ctx := c.Request.Context()

	seen := map[uuid.UUID]struct{}{}
	userIDs := make([]uuid.UUID, 0, len(comments))
	commentIDs := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		commentIDs = append(commentIDs, comment.ID)
		if _, dup := seen[comment.UserID]; !dup {
			seen[comment.UserID] = struct{}{}
			userIDs = append(userIDs, comment.UserID)
		}
	}

	profiles := map[uuid.UUID]*clients.Profile{}
	if len(userIDs) > 0 {
		fetched, err := a.userClient.GetProfiles(ctx, userIDs)
		if err != nil {
			a.logger.Warn("Profile enrichment failed", zap.Error(err))
		} else {
			profiles = fetched
		}
	}

	liked := map[uuid.UUID]bool{}
	if viewer, ok := actorID(c); ok && len(commentIDs) > 0 {
		status, err := a.likeClient.CommentStatusBatch(ctx, commentIDs, viewer)
		if err != nil {
			a.logger.Warn("Like status enrichment failed", zap.Error(err))
		} else {
			liked = status
		}
	}

	content := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		content = append(content, toCommentResponse(comment, profiles[comment.UserID], liked[comment.ID]))
	}
	c.JSON(http.StatusOK, PagedResponse{Content: content, Page: page, Size: size, TotalCount: total})
}

// AdjustLikesCount handles POST /comments/:id/likes/:op
func (a *CommentAPI) AdjustLikesCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	delta, ok := counterOp(c)
	if !ok {
		return
	}
	if err := a.comments.AdjustCounter(c.Request.Context(), id, "likes_count", delta); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
