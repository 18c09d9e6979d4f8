package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/service"
	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
)

const (
	// ProfileIDKey is the gin context key holding the acting profile's ID.
	ProfileIDKey = "profile_id"
	// UserIDKey is the gin context key holding the external user ID.
	UserIDKey = "user_id"
)

// AuthMiddleware resolves the request's identity and loads (or lazily
// creates) the profile bound to it. Requests without a resolvable identity
// are rejected with 401 before reaching any handler.
func AuthMiddleware(resolver *jwtmw.Resolver, profiles service.IProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			c.Abort()
			return
		}

		claims, err := resolver.Resolve(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		profile, err := profiles.GetOrCreate(c.Request.Context(), claims.UserID, claims.Name, claims.ImageURL, claims.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ProfileIDKey, profile.ID)
		c.Next()
	}
}
