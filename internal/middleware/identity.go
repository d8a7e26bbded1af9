package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
	"github.com/pushmasterhq/pushmaster-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved actor.
const ContextIdentityKey = "currentIdentity"

// Headers set by the authenticating proxy in front of the service.
const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// IdentityRecorder remembers an actor's display name as a side effect
// of them making a request.
type IdentityRecorder interface {
	RememberIdentity(ctx context.Context, identity models.Identity)
}

// Identity requires a resolved actor on the request. Authentication
// happens upstream; the proxy forwards the verified email and display
// name as headers. Requests without an email are rejected.
func Identity(recorder IdentityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
		if email == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing user identity"))
			c.Abort()
			return
		}

		identity := models.Identity{
			Email: email,
			Name:  strings.TrimSpace(c.GetHeader(HeaderUserName)),
		}
		if recorder != nil {
			recorder.RememberIdentity(c.Request.Context(), identity)
		}
		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// OptionalIdentity attaches the actor when present but does not block.
// Read-only routes use it so views can still personalize.
func OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
		if email != "" {
			c.Set(ContextIdentityKey, models.Identity{
				Email: email,
				Name:  strings.TrimSpace(c.GetHeader(HeaderUserName)),
			})
		}
		c.Next()
	}
}
