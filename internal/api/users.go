package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/db"
	"github.com/picstream/picstream/internal/feed"
	"github.com/picstream/picstream/internal/models"
	"github.com/picstream/picstream/internal/notify"
	"github.com/picstream/picstream/pkg/logging"
)

// UserAPI serves the user service surface: profiles, search, the follow
// graph, and the post-count counter endpoint hit by the post service.
type UserAPI struct {
	users     *db.UserRepository
	follows   *db.FollowRepository
	feedCache *feed.Cache
	publisher *notify.Publisher
	logger    *zap.Logger
}

// NewUserAPI creates a new user API
func NewUserAPI(repo *db.Repository, feedCache *feed.Cache, publisher *notify.Publisher) *UserAPI {
	return &UserAPI{
		users:     db.NewUserRepository(repo),
		follows:   db.NewFollowRepository(repo),
		feedCache: feedCache,
		publisher: publisher,
		logger:    logging.GetLogger().With(zap.String("component", "user-api")),
	}
}

type createUserRequest struct {
	ID       *uuid.UUID `json:"id"`
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Bio      string     `json:"bio"`
}

// CreateUser handles POST /users. Registration credentials live in the
// identity service; this only creates the profile projection.
func (u *UserAPI) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > 30 {
		respondError(c, Validationf("username must be 1-30 characters"))
		return
	}

	existing, err := u.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		respondError(c, Conflictf("username already taken: %s", req.Username))
		return
	}

	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:        id,
		Username:  req.Username,
		FullName:  req.FullName,
		Bio:       req.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	u.logger.Info("Created user", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, toProfile(user, nil))
}

// GetUser handles GET /users/:id
func (u *UserAPI) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := u.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, NotFoundf("user not found: %s", id))
		return
	}

	c.JSON(http.StatusOK, toProfile(user, u.viewerFollows(c, user.ID)))
}

// GetUserByUsername handles GET /users/username/:username
func (u *UserAPI) GetUserByUsername(c *gin.Context) {
	username := c.Param("username")

	user, err := u.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, NotFoundf("user not found: %s", username))
		return
	}

	c.JSON(http.StatusOK, toProfile(user, u.viewerFollows(c, user.ID)))
}

// viewerFollows computes the isFollowing flag for the requesting viewer,
// nil when there is no viewer or the viewer is the target
func (u *UserAPI) viewerFollows(c *gin.Context, targetID uuid.UUID) *bool {
	viewer, ok := actorID(c)
	if !ok || viewer == targetID {
		return nil
	}
	following, err := u.follows.IsFollowing(c.Request.Context(), viewer, targetID)
	if err != nil {
		u.logger.Warn("Follow lookup failed", zap.Error(err))
		return nil
	}
	return &following
}

// GetUsersBatch handles POST /users/batch. Ids that do not resolve are
// silently absent from the response.
func (u *UserAPI) GetUsersBatch(c *gin.Context) {
	var ids []uuid.UUID
	if err := c.ShouldBindJSON(&ids); err != nil {
		respondError(c, Validationf("body must be a list of user ids"))
		return
	}

	users, err := u.users.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]interface{}, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toProfile(user, nil))
	}
	c.JSON(http.StatusOK, profiles)
}

type updateProfileRequest struct {
	FullName *string `json:"fullName"`
	Bio      *string `json:"bio"`
}

// UpdateProfile handles PATCH /users/me
func (u *UserAPI) UpdateProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, Validationf("invalid request body"))
		return
	}

	user, err := u.users.GetByID(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, NotFoundf("user not found: %s", actor))
		return
	}

	if req.FullName != nil {
		if len(*req.FullName) > 100 {
			respondError(c, Validationf("full name too long"))
			return
		}
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		if len(*req.Bio) > 300 {
			respondError(c, Validationf("bio too long"))
			return
		}
		user.Bio = *req.Bio
	}
	user.UpdatedAt = time.Now().UTC()

	if err := u.users.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfile(user, nil))
}

// SearchUsers handles GET /users/search?q=
func (u *UserAPI) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, Validationf("q is required"))
		return
	}
	page, size := paging(c, 50)

	users, total, err := u.users.Search(c.Request.Context(), query, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}

	// One batched follow lookup for the whole page
	followed := map[uuid.UUID]bool{}
	if viewer, ok := actorID(c); ok {
		ids := make([]uuid.UUID, 0, len(users))
		for _, user := range users {
			ids = append(ids, user.ID)
		}
		if among, err := u.follows.FollowingAmong(c.Request.Context(), viewer, ids); err == nil {
			for _, id := range among {
				followed[id] = true
			}
		} else {
			u.logger.Warn("Follow enrichment failed", zap.Error(err))
		}
	}

	profiles := make([]interface{}, 0, len(users))
	for _, user := range users {
		isFollowing := followed[user.ID]
		profiles = append(profiles, toProfile(user, &isFollowing))
	}
	c.JSON(http.StatusOK, PagedResponse{Content: profiles, Page: page, Size: size, TotalCount: total})
}

// Follow handles POST /users/:id/follow
func (u *UserAPI) Follow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}

	if actor == target {
		respondError(c, Validationf("cannot follow yourself"))
		return
	}

	exists, err := u.users.Exists(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, NotFoundf("user not found: %s", target))
		return
	}

	already, err := u.follows.IsFollowing(c.Request.Context(), actor, target)
	if err != nil {
		respondError(c, err)
		return
	}
	if already {
		respondError(c, Conflictf("already following this user"))
		return
	}

	edge := &models.Follow{FollowerID: actor, FollowingID: target, CreatedAt: time.Now().UTC()}
	if err := u.follows.Create(c.Request.Context(), edge); err != nil {
		respondError(c, err)
		return
	}

	// Both counters live in this service; adjusted directly, floor-clamped
	u.adjustFollowCounts(c, actor, target, 1)

	// Secondary effects, best-effort from here on
	u.feedCache.InvalidateUser(c.Request.Context(), actor)
	u.publisher.Publish(c.Request.Context(), notify.NewEvent(notify.TypeFollow, actor, target, actor))

	u.logger.Info("Follow created",
		zap.String("follower_id", actor.String()),
		zap.String("following_id", target.String()))
	c.Status(http.StatusNoContent)
}

// Unfollow handles DELETE /users/:id/follow
func (u *UserAPI) Unfollow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}

	if actor == target {
		respondError(c, Validationf("cannot unfollow yourself"))
		return
	}

	removed, err := u.follows.Delete(c.Request.Context(), actor, target)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, NotFoundf("not following this user"))
		return
	}

	u.adjustFollowCounts(c, actor, target, -1)
	u.feedCache.InvalidateUser(c.Request.Context(), actor)

	c.Status(http.StatusNoContent)
}

func (u *UserAPI) adjustFollowCounts(c *gin.Context, follower, following uuid.UUID, delta int) {
	ctx := c.Request.Context()
	if err := u.users.AdjustCounter(ctx, follower, "following_count", delta); err != nil {
		u.logger.Warn("Following count adjustment failed", zap.Error(err))
	}
	if err := u.users.AdjustCounter(ctx, following, "followers_count", delta); err != nil {
		u.logger.Warn("Followers count adjustment failed", zap.Error(err))
	}
}

// FollowingIDs handles GET /users/:id/following/ids
func (u *UserAPI) FollowingIDs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ids, err := u.follows.FollowingIDs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, ids)
}

// FollowerIDs handles GET /users/:id/followers/ids
func (u *UserAPI) FollowerIDs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ids, err := u.follows.FollowerIDs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.JSON(http.StatusOK, ids)
}

// Followers handles GET /users/:id/followers
func (u *UserAPI) Followers(c *gin.Context) {
	u.listFollowProfiles(c, u.follows.FollowerIDsPage)
}

// Following handles GET /users/:id/following
func (u *UserAPI) Following(c *gin.Context) {
	u.listFollowProfiles(c, u.follows.FollowingIDsPage)
}

func (u *UserAPI) listFollowProfiles(c *gin.Context, fetch func(ctx context.Context, userID uuid.UUID, offset, limit int) ([]uuid.UUID, int64, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	exists, err := u.users.Exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, NotFoundf("user not found: %s", id))
		return
	}

	page, size := paging(c, 50)
	ids, total, err := fetch(c.Request.Context(), id, page*size, size)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := u.users.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	followed := map[uuid.UUID]bool{}
	if viewer, ok := actorID(c); ok {
		if among, err := u.follows.FollowingAmong(c.Request.Context(), viewer, ids); err == nil {
			for _, fid := range among {
				followed[fid] = true
			}
		}
	}

	profiles := make([]interface{}, 0, len(users))
	for _, user := range users {
		isFollowing := followed[user.ID]
		profiles = append(profiles, toProfile(user, &isFollowing))
	}
	c.JSON(http.StatusOK, PagedResponse{Content: profiles, Page: page, Size: size, TotalCount: total})
}

// AdjustPostCount handles POST /users/:id/posts/:op, the counter endpoint
// called by the post service. Decrements clamp at zero.
func (u *UserAPI) AdjustPostCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	delta, ok := counterOp(c)
	if !ok {
		return
	}

	if err := u.users.AdjustCounter(c.Request.Context(), id, "posts_count", delta); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
