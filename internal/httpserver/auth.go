package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey = "user_id" // uuid string
	ctxRoleKey   = "role"    // "customer" or "admin"

	roleAdmin = "admin"
)

// authRequired validates the Bearer token and stores the caller's identity on
// the gin context. Tokens are HS256 with the user id in sub and the role claim
// set to customer or admin.
func authRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}
		raw := strings.TrimSpace(parts[1])
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || token == nil || !token.Valid {
			abortUnauthorized(c)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c)
			return
		}

		sub, _ := claims["sub"].(string)
		if _, err := uuid.Parse(sub); err != nil {
			abortUnauthorized(c)
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			abortUnauthorized(c)
			return
		}

		c.Set(ctxUserIDKey, sub)
		c.Set(ctxRoleKey, role)
		c.Next()
	}
}

// adminOnly must run after authRequired.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRoleKey) != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
