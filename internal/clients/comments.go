package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/picstream/picstream/pkg/telemetry"
)

// CommentClient talks to the comment service
type CommentClient struct {
	*httpClient
}

// NewCommentClient creates a new comment service client
func NewCommentClient(baseURL string, timeout time.Duration) *CommentClient {
	return &CommentClient{httpClient: newHTTPClient(baseURL, timeout, "comment-client")}
}

// AdjustLikesCount applies a likes-count delta on the comment service.
// op is "increment" or "decrement".
func (c *CommentClient) AdjustLikesCount(ctx context.Context, commentID uuid.UUID, op string) error {
	ctx, span := telemetry.StartSpan(ctx, "comments.adjust_likes_count")
	defer span.End()

	return c.postJSON(ctx, fmt.Sprintf("/comments/%s/likes/%s", commentID, op), nil, nil)
}
