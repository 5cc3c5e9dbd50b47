package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"openbook/internal/domain/user"
	"openbook/internal/pkg/cookie"
	"openbook/internal/pkg/jwt"
	"openbook/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	jwt *jwt.Service
}

const (
	ctxUserIDKey    = "user_id"
	ctxUserGroupKey = "user_group"
)

var groupHierarchy = map[user.Group]int{
	user.GroupStandard: 1,
	user.GroupPremium:  2,
	user.GroupAdmin:    3,
}

func NewAuthMiddleware(jwtService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtService}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetAccessToken(c)

		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(authHeader[len("Bearer "):])
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		group := user.Group(claims.Group)
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserGroupKey, group)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.UserID.String(),
			"group":   claims.Group,
		})
		c.Next()
	}
}

func hasMinimumGroup(userGroup, minGroup user.Group) bool {
	userLevel, userExists := groupHierarchy[userGroup]
	minLevel, minExists := groupHierarchy[minGroup]
	return userExists && minExists && userLevel >= minLevel
}

func (m *AuthMiddleware) RequireGroupAtLeast(minGroup user.Group) gin.HandlerFunc {
	return func(c *gin.Context) {
		group, ok := GetUserGroup(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !hasMinimumGroup(group, minGroup) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserGroup(c *gin.Context) (user.Group, bool) {
	userGroup, exists := c.Get(ctxUserGroupKey)
	if !exists {
		return "", false
	}

	group, ok := userGroup.(user.Group)
	return group, ok
}

// GetIdentity bundles the authenticated caller for the usecase layer.
func GetIdentity(c *gin.Context) (shared.Identity, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return shared.Identity{}, false
	}
	group, ok := GetUserGroup(c)
	if !ok {
		return shared.Identity{}, false
	}
	return shared.Identity{UserID: id, Group: group}, true
}
