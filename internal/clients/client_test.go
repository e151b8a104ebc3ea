package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDoErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "not found", status: http.StatusNotFound, expected: ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, expected: ErrUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, expected: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newHTTPClient(srv.URL, time.Second, "test")
			err := c.getJSON(context.Background(), "/anything", nil)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestDoTransportError(t *testing.T) {
	// Nothing listens here
	c := newHTTPClient("http://127.0.0.1:1", 100*time.Millisecond, "test")
	err := c.getJSON(context.Background(), "/anything", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable for transport failure, got %v", err)
	}
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := newHTTPClient(srv.URL, 50*time.Millisecond, "test")
	err := c.getJSON(context.Background(), "/slow", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable for timeout, got %v", err)
	}
}

func TestStatusBatchDecodesUUIDKeys(t *testing.T) {
	liked := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/likes/posts/status" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("userId") == "" {
			http.Error(w, "missing userId", http.StatusBadRequest)
			return
		}
		var ids []uuid.UUID
		if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[uuid.UUID]bool{liked: true})
	}))
	defer srv.Close()

	c := NewLikeClient(srv.URL, time.Second)
	status, err := c.PostStatusBatch(context.Background(), []uuid.UUID{liked, uuid.New()}, uuid.New())
	if err != nil {
		t.Fatalf("PostStatusBatch failed: %v", err)
	}
	if !status[liked] {
		t.Error("Expected liked id to map to true")
	}
	if len(status) != 1 {
		t.Errorf("Expected only liked ids in the response, got %d entries", len(status))
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/feed" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(PostPage{})
	}))
	defer srv.Close()

	c := NewPostClient(srv.URL+"/", time.Second)
	if _, err := c.FeedPage(context.Background(), []uuid.UUID{uuid.New()}, 0, 20); err != nil {
		t.Fatalf("Trailing slash in base URL should be tolerated: %v", err)
	}
}
