package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/picstream/picstream/pkg/telemetry"
)

// UserClient talks to the user service
type UserClient struct {
	*httpClient
}

// NewUserClient creates a new user service client
func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{httpClient: newHTTPClient(baseURL, timeout, "user-client")}
}

// GetProfile fetches a user profile projection
func (c *UserClient) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.get_profile")
	defer span.End()

	var profile Profile
	if err := c.getJSON(ctx, "/users/"+userID.String(), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FollowingIDs fetches the ids of every user the given user follows
func (c *UserClient) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.following_ids")
	defer span.End()

	var ids []uuid.UUID
	if err := c.getJSON(ctx, "/users/"+userID.String()+"/following/ids", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowerIDs fetches the ids of every follower of the given user
func (c *UserClient) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.follower_ids")
	defer span.End()

	var ids []uuid.UUID
	if err := c.getJSON(ctx, "/users/"+userID.String()+"/followers/ids", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetProfiles fetches multiple profile projections in a single call.
// Ids that do not resolve are absent from the result.
func (c *UserClient) GetProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.get_profiles")
	defer span.End()

	var profiles []*Profile
	if err := c.postJSON(ctx, "/users/batch", userIDs, &profiles); err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]*Profile, len(profiles))
	for _, p := range profiles {
		result[p.ID] = p
	}
	return result, nil
}

// AdjustPostCount applies a post-count delta on the user service.
// op is "increment" or "decrement".
func (c *UserClient) AdjustPostCount(ctx context.Context, userID uuid.UUID, op string) error {
	ctx, span := telemetry.StartSpan(ctx, "users.adjust_post_count")
	defer span.End()

	return c.postJSON(ctx, fmt.Sprintf("/users/%s/posts/%s", userID, op), nil, nil)
}
