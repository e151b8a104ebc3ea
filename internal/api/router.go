package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/cache"
	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/internal/counter"
	"github.com/picstream/picstream/internal/db"
	"github.com/picstream/picstream/internal/feed"
	"github.com/picstream/picstream/internal/notify"
	"github.com/picstream/picstream/pkg/logging"
)

// Deps carries the shared components the route handlers are built from
type Deps struct {
	DB         *db.DB
	Cache      *cache.Cache
	Users      *clients.UserClient
	Posts      *clients.PostClient
	Comments   *clients.CommentClient
	Likes      *clients.LikeClient
	Propagator *counter.Propagator
	FeedCache  *feed.Cache
	Aggregator *feed.Aggregator
	Publisher  *notify.Publisher
	Inbox      *notify.Inbox
}

// Router sets up API routes
type Router struct {
	deps   Deps
	cache  *cache.Cache
	logger *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(deps Deps) *Router {
	return &Router{
		deps:   deps,
		cache:  deps.Cache,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	repo := db.NewRepository(r.deps.DB.DB)

	userAPI := NewUserAPI(repo, r.deps.FeedCache, r.deps.Publisher)
	postAPI := NewPostAPI(repo, r.deps.Users, r.deps.Likes, r.deps.Propagator, r.deps.FeedCache)
	commentAPI := NewCommentAPI(repo, r.deps.Posts, r.deps.Users, r.deps.Likes, r.deps.Propagator, r.deps.Publisher)
	likeAPI := NewLikeAPI(repo, r.deps.Posts, r.deps.Propagator, r.deps.Publisher)
	feedAPI := NewFeedAPI(r.deps.Aggregator)
	notificationAPI := NewNotificationAPI(r.deps.Inbox)

	// User service surface
	users := engine.Group("/users")
	users.POST("", userAPI.CreateUser)
	users.POST("/batch", userAPI.GetUsersBatch)
	users.GET("/search", userAPI.SearchUsers)
	users.GET("/username/:username", userAPI.GetUserByUsername)
	users.PATCH("/me", userAPI.UpdateProfile)
	users.GET("/:id", userAPI.GetUser)
	users.POST("/:id/follow", userAPI.Follow)
	users.DELETE("/:id/follow", userAPI.Unfollow)
	users.GET("/:id/followers", userAPI.Followers)
	users.GET("/:id/followers/ids", userAPI.FollowerIDs)
	users.GET("/:id/following", userAPI.Following)
	users.GET("/:id/following/ids", userAPI.FollowingIDs)
	users.GET("/:id/posts", postAPI.ListUserPosts)
	users.POST("/:id/posts/:op", userAPI.AdjustPostCount)

	// Post service surface
	posts := engine.Group("/posts")
	posts.POST("", postAPI.CreatePost)
	posts.POST("/feed", postAPI.FeedPage)
	posts.GET("/:id", postAPI.GetPost)
	posts.PATCH("/:id", postAPI.UpdatePost)
	posts.DELETE("/:id", postAPI.DeletePost)
	posts.GET("/:id/exists", postAPI.PostExists)
	posts.GET("/:id/comments", commentAPI.ListPostComments)
	posts.POST("/:id/likes/:op", postAPI.AdjustLikesCount)
	posts.POST("/:id/comments/:op", postAPI.AdjustCommentsCount)

	// Comment service surface
	comments := engine.Group("/comments")
	comments.POST("", commentAPI.CreateComment)
	comments.GET("/:id", commentAPI.GetComment)
	comments.PATCH("/:id", commentAPI.UpdateComment)
	comments.DELETE("/:id", commentAPI.DeleteComment)
	comments.GET("/:id/replies", commentAPI.ListReplies)
	comments.POST("/:id/likes/:op", commentAPI.AdjustLikesCount)

	// Like service surface
	likes := engine.Group("/likes")
	likes.POST("/posts/status", likeAPI.PostStatusBatch)
	likes.POST("/comments/status", likeAPI.CommentStatusBatch)
	likes.POST("/posts/:id", likeAPI.LikePost)
	likes.DELETE("/posts/:id", likeAPI.UnlikePost)
	likes.GET("/posts/:id", likeAPI.PostLikeStatus)
	likes.POST("/comments/:id", likeAPI.LikeComment)
	likes.DELETE("/comments/:id", likeAPI.UnlikeComment)
	likes.GET("/comments/:id", likeAPI.CommentLikeStatus)

	// Viewer surfaces
	engine.GET("/feed", feedAPI.GetFeed)
	engine.GET("/notifications", notificationAPI.ListNotifications)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	if r.cache != nil {
		if err := r.cache.Health(c.Request.Context()); err != nil {
			status = "DEGRADED"
		}
	}
	c.JSON(200, gin.H{
		"status":  status,
		"service": "picstream-api",
	})
}
