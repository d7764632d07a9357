package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sheetcharts/domain/core"
	"sheetcharts/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError writes {error} with the status derived from the error code.
// Internal failures are logged and not echoed in full.
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses a UUID path parameter. Malformed ids cannot exist, so they
// are reported as not found.
func pathID(c *gin.Context, name, resource string) (core.ID, error) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		return "", errors.NotFound(resource)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

// pagination reads limit/offset with limit clamped to [1, 100]
func pagination(c *gin.Context) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit", 20); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(c, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}
