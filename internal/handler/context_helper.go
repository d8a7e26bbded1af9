package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/middleware"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

func identityFromContext(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(middleware.ContextIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	if !ok {
		return models.Identity{}, false
	}
	return identity, ok
}
