package middleware

import (
	"log"
	"net/http"

	"sheetcharts/domain/core"
	"sheetcharts/internal/errors"
	"sheetcharts/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDHeader carries the caller's identity
const UserIDHeader = "X-User-ID"

const userKey = "userID"

// ResolveUser is middleware that attaches the calling user to the context.
// Requests without a header act as the default user; a malformed or
// unknown id is rejected.
func ResolveUser(users ports.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.Set(userKey, core.DefaultUserID)
			c.Next()
			return
		}

		userID, err := core.ParseID(raw)
		if err != nil {
			abort(c, errors.Unauthorized("invalid "+UserIDHeader+" header"))
			return
		}

		if users != nil {
			if _, err := users.GetUserByID(c.Request.Context(), uuid.MustParse(userID.String())); err != nil {
				if core.IsNotFoundError(err) {
					abort(c, errors.Unauthorized("unknown user"))
					return
				}
				log.Printf("[ResolveUser] Failed to look up user %s: %v", userID, err)
				abort(c, errors.Wrap(err, "failed to resolve user"))
				return
			}
		}

		c.Set(userKey, userID)
		c.Next()
	}
}

// CurrentUser returns the user resolved by ResolveUser, or the default user
func CurrentUser(c *gin.Context) core.ID {
	if v, ok := c.Get(userKey); ok {
		if id, ok := v.(core.ID); ok {
			return id
		}
	}
	return core.DefaultUserID
}

// MaxBodySize caps request bodies at limit bytes
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{"error": err.Error()})
}
