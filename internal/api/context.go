package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorHeader carries the authenticated user's id, injected by the gateway
// upstream of this service. Credential handling is not this system's
// concern; handlers only use the id for ownership checks.
const actorHeader = "X-User-ID"

// actorID extracts the acting user's id from the request
func actorID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(actorHeader)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// requireActor extracts the acting user's id or writes a validation error
func requireActor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := actorID(c)
	if !ok {
		respondError(c, Validationf("missing or invalid %s header", actorHeader))
	}
	return id, ok
}

// pathID parses a uuid path parameter
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, Validationf("invalid %s: %s", name, c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

// paging parses page/size query parameters, clamping size to maxSize
func paging(c *gin.Context, maxSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > maxSize {
		size = maxSize
	}
	return page, size
}

// counterOp validates an increment/decrement path parameter and returns the
// signed delta
func counterOp(c *gin.Context) (int, bool) {
	switch c.Param("op") {
	case "increment":
		return 1, true
	case "decrement":
		return -1, true
	default:
		respondError(c, Validationf("op must be increment or decrement"))
		return 0, false
	}
}
