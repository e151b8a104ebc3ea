package counter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/picstream/picstream/internal/clients"
)

type recordingServer struct {
	mu    sync.Mutex
	paths []string
	fail  bool
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()
	if s.fail {
		http.Error(w, "down", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *recordingServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func newTestPropagator(t *testing.T, rec *recordingServer) *Propagator {
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	timeout := 2 * time.Second
	return NewPropagator(
		clients.NewUserClient(srv.URL, timeout),
		clients.NewPostClient(srv.URL, timeout),
		clients.NewCommentClient(srv.URL, timeout),
	)
}

func TestApplyRoutes(t *testing.T) {
	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	tests := []struct {
		name     string
		delta    Delta
		expected string
	}{
		{
			name:     "user posts increment",
			delta:    Delta{Entity: EntityUser, ID: id, Field: FieldPosts, Sign: 1},
			expected: fmt.Sprintf("/users/%s/posts/increment", id),
		},
		{
			name:     "user posts decrement",
			delta:    Delta{Entity: EntityUser, ID: id, Field: FieldPosts, Sign: -1},
			expected: fmt.Sprintf("/users/%s/posts/decrement", id),
		},
		{
			name:     "post likes increment",
			delta:    Delta{Entity: EntityPost, ID: id, Field: FieldLikes, Sign: 1},
			expected: fmt.Sprintf("/posts/%s/likes/increment", id),
		},
		{
			name:     "post comments decrement",
			delta:    Delta{Entity: EntityPost, ID: id, Field: FieldComments, Sign: -1},
			expected: fmt.Sprintf("/posts/%s/comments/decrement", id),
		},
		{
			name:     "comment likes increment",
			delta:    Delta{Entity: EntityComment, ID: id, Field: FieldLikes, Sign: 1},
			expected: fmt.Sprintf("/comments/%s/likes/increment", id),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingServer{}
			p := newTestPropagator(t, rec)

			p.Apply(context.Background(), tt.delta)

			paths := rec.recorded()
			assert.Equal(t, []string{tt.expected}, paths)
		})
	}
}

func TestApplyUnroutableDelta(t *testing.T) {
	rec := &recordingServer{}
	p := newTestPropagator(t, rec)

	// No owning endpoint for a user likes counter; dropped without a call
	p.Apply(context.Background(), Delta{Entity: EntityUser, ID: uuid.New(), Field: FieldLikes, Sign: 1})
	assert.Empty(t, rec.recorded())
}

func TestApplySwallowsDeliveryFailure(t *testing.T) {
	rec := &recordingServer{fail: true}
	p := newTestPropagator(t, rec)

	// Must not panic; the delta is logged and dropped
	p.Apply(context.Background(), Delta{Entity: EntityPost, ID: uuid.New(), Field: FieldLikes, Sign: 1})
	assert.Len(t, rec.recorded(), 1)
}
