package http

import (
	"github.com/gin-gonic/gin"

	"github.com/visaflow/visa-assistant/internal/models"
)

const contextUserKey = "current_user"

// IdentityProvider resolves the requesting user. A nil return means the
// request is unauthenticated.
type IdentityProvider interface {
	CurrentUser(c *gin.Context) *models.User
}

// HeaderIdentityProvider trusts identity headers set by the fronting auth
// proxy. The service itself never sees credentials.
type HeaderIdentityProvider struct{}

// CurrentUser implements IdentityProvider.
func (HeaderIdentityProvider) CurrentUser(c *gin.Context) *models.User {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		return nil
	}
	return &models.User{
		ID:        id,
		FirstName: c.GetHeader("X-User-First-Name"),
		LastName:  c.GetHeader("X-User-Last-Name"),
		Email:     c.GetHeader("X-User-Email"),
	}
}

// authMiddleware resolves identity once per request and rejects anonymous
// calls to protected routes.
func authMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := provider.CurrentUser(c)
		if user == nil {
			writeError(c, models.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// currentUser returns the authenticated user stored by authMiddleware.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
