package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/notify"
	"github.com/picstream/picstream/pkg/logging"
)

// NotificationAPI serves GET /notifications from the per-user inbox
type NotificationAPI struct {
	inbox  *notify.Inbox
	logger *zap.Logger
}

// NewNotificationAPI creates a new notification API
func NewNotificationAPI(inbox *notify.Inbox) *NotificationAPI {
	return &NotificationAPI{
		inbox:  inbox,
		logger: logging.GetLogger().With(zap.String("component", "notification-api")),
	}
}

// ListNotifications handles GET /notifications?limit=. Newest first; the
// inbox is bounded so older events age out.
func (n *NotificationAPI) ListNotifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	events, err := n.inbox.List(c.Request.Context(), actor, limit)
	if err != nil {
		n.logger.Warn("Inbox read failed", zap.Error(err))
		events = []notify.Event{}
	}
	if events == nil {
		events = []notify.Event{}
	}
	c.JSON(http.StatusOK, events)
}
