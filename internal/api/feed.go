package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/picstream/picstream/internal/feed"
)

// FeedAPI serves GET /feed
type FeedAPI struct {
	aggregator *feed.Aggregator
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(aggregator *feed.Aggregator) *FeedAPI {
	return &FeedAPI{aggregator: aggregator}
}

// GetFeed handles GET /feed?page=&size=. The feed never errors: when a
// dependency is down the viewer gets an empty page for that request.
func (f *FeedAPI) GetFeed(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	// The aggregator clamps paging itself so cached keys always reflect
	// the effective values
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	c.JSON(http.StatusOK, f.aggregator.GetFeed(c.Request.Context(), actor, page, size))
}
