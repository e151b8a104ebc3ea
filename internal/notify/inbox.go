package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/cache"
	"github.com/picstream/picstream/pkg/logging"
)

const (
	inboxMaxLen = 200
	inboxTTL    = 30 * 24 * time.Hour
)

// Inbox stores each recipient's recent notifications as a capped Redis list
type Inbox struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewInbox creates a new notification inbox
func NewInbox(c *cache.Cache) *Inbox {
	return &Inbox{
		cache:  c,
		logger: logging.GetLogger().With(zap.String("component", "notify-inbox")),
	}
}

func inboxKey(userID uuid.UUID) string {
	return "notif:" + userID.String()
}

// Push appends an event to the recipient's inbox
func (i *Inbox) Push(ctx context.Context, event Event) error {
	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return i.cache.PushToList(ctx, inboxKey(event.RecipientID), string(encoded), inboxMaxLen, inboxTTL)
}

// List returns up to limit recent notifications, newest first. Entries that
// fail to decode are skipped.
func (i *Inbox) List(ctx context.Context, userID uuid.UUID, limit int64) ([]Event, error) {
	if limit <= 0 || limit > inboxMaxLen {
		limit = 50
	}

	values, err := i.cache.ListRange(ctx, inboxKey(userID), limit)
	if err != nil {
		if err == cache.ErrCacheDisabled {
			return []Event{}, nil
		}
		return nil, err
	}

	events := make([]Event, 0, len(values))
	for _, v := range values {
		var e Event
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			i.logger.Warn("Skipping undecodable notification", zap.Error(err))
			continue
		}
		events = append(events, e)
	}
	return events, nil
}
