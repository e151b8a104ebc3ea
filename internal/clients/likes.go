package clients

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/picstream/picstream/pkg/telemetry"
)

// LikeClient talks to the like service
type LikeClient struct {
	*httpClient
}

// NewLikeClient creates a new like service client
func NewLikeClient(baseURL string, timeout time.Duration) *LikeClient {
	return &LikeClient{httpClient: newHTTPClient(baseURL, timeout, "like-client")}
}

// PostStatusBatch fetches the like status of the given posts for one user
// in a single call. The response contains only the liked subset; callers
// default missing ids to false.
func (c *LikeClient) PostStatusBatch(ctx context.Context, postIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "likes.post_status_batch")
	defer span.End()

	var status map[uuid.UUID]bool
	path := "/likes/posts/status?userId=" + userID.String()
	if err := c.postJSON(ctx, path, postIDs, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// CommentStatusBatch fetches the like status of the given comments for one
// user in a single call
func (c *LikeClient) CommentStatusBatch(ctx context.Context, commentIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "likes.comment_status_batch")
	defer span.End()

	var status map[uuid.UUID]bool
	path := "/likes/comments/status?userId=" + userID.String()
	if err := c.postJSON(ctx, path, commentIDs, &status); err != nil {
		return nil, err
	}
	return status, nil
}
