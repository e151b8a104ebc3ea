package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected int
	}{
		{name: "not found", kind: KindNotFound, expected: http.StatusNotFound},
		{name: "conflict", kind: KindConflict, expected: http.StatusConflict},
		{name: "unauthorized", kind: KindUnauthorized, expected: http.StatusForbidden},
		{name: "validation", kind: KindValidation, expected: http.StatusBadRequest},
		{name: "upstream", kind: KindUpstream, expected: http.StatusBadGateway},
		{name: "unknown", kind: Kind(99), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.kind); got != tt.expected {
				t.Errorf("statusFor(%d) = %d, want %d", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("classified error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, NotFoundf("post not found: %s", "abc"))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if body["error"] != "post not found: abc" {
			t.Errorf("Unexpected error message: %q", body["error"])
		}
	})

	t.Run("wrapped error keeps its kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		wrapped := errors.Join(errors.New("context"), Conflictf("already liked"))
		respondError(c, wrapped)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("unclassified error is opaque", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if body["error"] != "internal error" {
			t.Errorf("Internal details must not leak, got: %q", body["error"])
		}
	})
}
