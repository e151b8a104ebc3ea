// Package notify implements best-effort notification delivery: domain
// events published to Kafka by the owning service, consumed into
// per-recipient Redis inboxes. Publish failures are logged and dropped,
// exactly like counter propagation.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeLike    = "like"
	TypeComment = "comment"
	TypeFollow  = "follow"
)

// Event is one notification-worthy domain event
type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	ActorID     uuid.UUID `json:"actorId"`
	RecipientID uuid.UUID `json:"recipientId"`
	SubjectID   uuid.UUID `json:"subjectId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewEvent builds an event with a fresh id and timestamp
func NewEvent(eventType string, actorID, recipientID, subjectID uuid.UUID) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: recipientID,
		SubjectID:   subjectID,
		CreatedAt:   time.Now().UTC(),
	}
}
