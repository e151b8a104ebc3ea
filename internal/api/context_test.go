package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func testContext(t *testing.T, target string, headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, w
}

func TestActorID(t *testing.T) {
	id := uuid.New()

	c, _ := testContext(t, "/feed", map[string]string{"X-User-ID": id.String()})
	got, ok := actorID(c)
	if !ok || got != id {
		t.Errorf("actorID() = %v, %v; want %v, true", got, ok, id)
	}

	c, _ = testContext(t, "/feed", nil)
	if _, ok := actorID(c); ok {
		t.Error("Expected no actor without header")
	}

	c, _ = testContext(t, "/feed", map[string]string{"X-User-ID": "not-a-uuid"})
	if _, ok := actorID(c); ok {
		t.Error("Expected no actor for malformed header")
	}
}

func TestRequireActor(t *testing.T) {
	c, w := testContext(t, "/feed", nil)
	if _, ok := requireActor(c); ok {
		t.Fatal("Expected requireActor to fail without header")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestPaging(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expectedPage int
		expectedSize int
	}{
		{name: "defaults", query: "", expectedPage: 0, expectedSize: 20},
		{name: "explicit", query: "?page=3&size=10", expectedPage: 3, expectedSize: 10},
		{name: "negative page", query: "?page=-2", expectedPage: 0, expectedSize: 20},
		{name: "oversized clamps", query: "?size=9999", expectedPage: 0, expectedSize: 50},
		{name: "zero size clamps", query: "?size=0", expectedPage: 0, expectedSize: 50},
		{name: "garbage clamps", query: "?page=x&size=y", expectedPage: 0, expectedSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext(t, "/users/search"+tt.query, nil)
			page, size := paging(c, 50)
			if page != tt.expectedPage || size != tt.expectedSize {
				t.Errorf("paging(%q) = %d, %d; want %d, %d",
					tt.query, page, size, tt.expectedPage, tt.expectedSize)
			}
		})
	}
}

func TestCounterOp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		op       string
		expected int
		ok       bool
	}{
		{op: "increment", expected: 1, ok: true},
		{op: "decrement", expected: -1, ok: true},
		{op: "reset", expected: 0, ok: false},
		{op: "", expected: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run("op "+tt.op, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "op", Value: tt.op}}

			delta, ok := counterOp(c)
			if delta != tt.expected || ok != tt.ok {
				t.Errorf("counterOp(%q) = %d, %v; want %d, %v", tt.op, delta, ok, tt.expected, tt.ok)
			}
			if !tt.ok && w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400 for invalid op, got %d", w.Code)
			}
		})
	}
}
