package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/picstream/picstream/pkg/config"
)

func TestNewEvent(t *testing.T) {
	actor := uuid.New()
	recipient := uuid.New()
	subject := uuid.New()

	event := NewEvent(TypeLike, actor, recipient, subject)

	if event.ID == uuid.Nil {
		t.Error("Expected a fresh event id")
	}
	if event.Type != TypeLike {
		t.Errorf("Expected type %q, got %q", TypeLike, event.Type)
	}
	if event.ActorID != actor || event.RecipientID != recipient || event.SubjectID != subject {
		t.Error("Event ids do not match inputs")
	}
	if event.CreatedAt.IsZero() {
		t.Error("Expected a timestamp")
	}
}

func TestEventRoundTrip(t *testing.T) {
	event := NewEvent(TypeComment, uuid.New(), uuid.New(), uuid.New())

	encoded, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Failed to encode event: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if decoded.ID != event.ID || decoded.RecipientID != event.RecipientID {
		t.Error("Event did not survive the round trip")
	}
}

func TestPublisherDisabled(t *testing.T) {
	publisher := NewPublisher(&config.KafkaConfig{Enabled: false})
	if publisher != nil {
		t.Fatal("Expected nil publisher when Kafka is disabled")
	}

	// Publishing on the nil publisher is a no-op, not a panic
	publisher.Publish(context.Background(), NewEvent(TypeFollow, uuid.New(), uuid.New(), uuid.New()))
	if err := publisher.Close(); err != nil {
		t.Errorf("Close on nil publisher should be a no-op: %v", err)
	}
}

func TestConsumerDisabled(t *testing.T) {
	consumer := NewConsumer(&config.KafkaConfig{Enabled: false}, NewInbox(nil))
	if consumer != nil {
		t.Fatal("Expected nil consumer when Kafka is disabled")
	}

	// Run on the nil consumer returns immediately
	consumer.Run(context.Background())
}

func TestInboxListWithoutCache(t *testing.T) {
	inbox := NewInbox(nil)

	events, err := inbox.List(context.Background(), uuid.New(), 50)
	if err != nil {
		t.Fatalf("Disabled cache should yield an empty inbox, got: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected empty inbox, got %d events", len(events))
	}
}

func TestInboxKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	if got := inboxKey(id); got != "notif:11111111-2222-3333-4444-555555555555" {
		t.Errorf("inboxKey() = %q", got)
	}
}
