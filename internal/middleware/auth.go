package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/service/access"
	"github.com/medcore/clinic-api/pkg/auth"
	"github.com/medcore/clinic-api/pkg/httputil"
)

const ContextAccess = "accessCtx"

type AuthMiddleware struct {
	jwtSvc   auth.JWTService
	resolver *access.Resolver
}

func NewAuthMiddleware(jwtSvc auth.JWTService, resolver *access.Resolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:   jwtSvc,
		resolver: resolver,
	}
}

// Authenticate parses the bearer token and resolves the AccessContext once
// for the request. Handlers read the context value; nothing downstream
// consults ambient session state.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing bearer token"})
			return
		}

		userID, err := m.jwtSvc.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			return
		}

		accessCtx, err := m.resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAccess, accessCtx)
		c.Next()
	}
}

// AccessFrom extracts the resolved AccessContext from the request.
func AccessFrom(c *gin.Context) *model.AccessContext {
	if v, ok := c.Get(ContextAccess); ok {
		if accessCtx, ok := v.(*model.AccessContext); ok {
			return accessCtx
		}
	}
	return nil
}
