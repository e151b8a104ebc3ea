package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/picstream/picstream/pkg/telemetry"
)

// PostClient talks to the post service
type PostClient struct {
	*httpClient
}

// NewPostClient creates a new post service client
func NewPostClient(baseURL string, timeout time.Duration) *PostClient {
	return &PostClient{httpClient: newHTTPClient(baseURL, timeout, "post-client")}
}

// FeedPage fetches one reverse-chronological page of posts authored by the
// given id set. This is a single batched call, not one call per author.
func (c *PostClient) FeedPage(ctx context.Context, authorIDs []uuid.UUID, page, size int) (*PostPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.feed_page")
	defer span.End()

	var result PostPage
	path := fmt.Sprintf("/posts/feed?page=%d&size=%d", page, size)
	if err := c.postJSON(ctx, path, authorIDs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPost fetches one post summary
func (c *PostClient) GetPost(ctx context.Context, postID uuid.UUID) (*FeedPost, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.get_post")
	defer span.End()

	var post FeedPost
	if err := c.getJSON(ctx, "/posts/"+postID.String(), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Exists checks whether an active post exists
func (c *PostClient) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.exists")
	defer span.End()

	var result struct {
		Exists bool `json:"exists"`
	}
	if err := c.getJSON(ctx, "/posts/"+postID.String()+"/exists", &result); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// AdjustLikesCount applies a likes-count delta on the post service.
// op is "increment" or "decrement".
func (c *PostClient) AdjustLikesCount(ctx context.Context, postID uuid.UUID, op string) error {
	ctx, span := telemetry.StartSpan(ctx, "posts.adjust_likes_count")
	defer span.End()

	return c.postJSON(ctx, fmt.Sprintf("/posts/%s/likes/%s", postID, op), nil, nil)
}

// AdjustCommentsCount applies a comments-count delta on the post service
func (c *PostClient) AdjustCommentsCount(ctx context.Context, postID uuid.UUID, op string) error {
	ctx, span := telemetry.StartSpan(ctx, "posts.adjust_comments_count")
	defer span.End()

	return c.postJSON(ctx, fmt.Sprintf("/posts/%s/comments/%s", postID, op), nil, nil)
}
