// Package counter implements best-effort propagation of denormalized
// counter deltas between services that do not share a database.
package counter

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/pkg/logging"
	"github.com/picstream/picstream/pkg/telemetry"
)

// Entity identifies the kind of entity owning the counter
type Entity string

// Field identifies the counter field being adjusted
type Field string

// Counter targets
const (
	EntityUser    Entity = "user"
	EntityPost    Entity = "post"
	EntityComment Entity = "comment"

	FieldLikes    Field = "likes"
	FieldComments Field = "comments"
	FieldPosts    Field = "posts"
)

// Delta is an ephemeral +1/-1 intent against a counter owned by another
// service. It is not persisted; delivery is fire-and-forget.
type Delta struct {
	Entity Entity
	ID     uuid.UUID
	Field  Field
	Sign   int // +1 or -1
}

// Propagator delivers counter deltas to their owning services. A failed
// delivery is logged and dropped: the originating write is already
// committed, there is no retry queue, and duplicate prevention lives in the
// uniqueness constraints upstream of the delta. The receiving side clamps
// decrements at zero.
type Propagator struct {
	users    *clients.UserClient
	posts    *clients.PostClient
	comments *clients.CommentClient
	logger   *zap.Logger
}

// NewPropagator creates a new counter propagator
func NewPropagator(users *clients.UserClient, posts *clients.PostClient, comments *clients.CommentClient) *Propagator {
	return &Propagator{
		users:    users,
		posts:    posts,
		comments: comments,
		logger:   logging.GetLogger().With(zap.String("component", "counter-propagator")),
	}
}

// Apply delivers one delta. It never returns an error: any failure is a
// degraded continuation for the caller.
func (p *Propagator) Apply(ctx context.Context, d Delta) {
	ctx, span := telemetry.StartSpan(ctx, "counter.apply")
	defer span.End()

	op := "increment"
	if d.Sign < 0 {
		op = "decrement"
	}

	var err error
	switch {
	case d.Entity == EntityUser && d.Field == FieldPosts:
		err = p.users.AdjustPostCount(ctx, d.ID, op)
	case d.Entity == EntityPost && d.Field == FieldLikes:
		err = p.posts.AdjustLikesCount(ctx, d.ID, op)
	case d.Entity == EntityPost && d.Field == FieldComments:
		err = p.posts.AdjustCommentsCount(ctx, d.ID, op)
	case d.Entity == EntityComment && d.Field == FieldLikes:
		err = p.comments.AdjustLikesCount(ctx, d.ID, op)
	default:
		p.logger.Warn("Unroutable counter delta",
			zap.String("entity", string(d.Entity)),
			zap.String("field", string(d.Field)))
		return
	}

	if err != nil {
		p.logger.Warn("Counter propagation failed",
			zap.String("entity", string(d.Entity)),
			zap.String("id", d.ID.String()),
			zap.String("field", string(d.Field)),
			zap.String("op", op),
			zap.Error(err))
	}
}
