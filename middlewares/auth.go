package middlewares

import (
	"net/http"
	"strings"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/config"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the JWT token from header OR query parameter.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try Authorization header
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// 2. Fallback to query parameter (websocket clients can't set headers)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token de autorización requerido"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token JWT inválido o expirado"})
			c.Abort()
			return
		}

		// Tokens of deactivated accounts stop working immediately.
		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil || !user.Activo {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token JWT inválido o expirado"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("correo", claims.Correo)
		c.Set("rol", user.Rol)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated user
// has one of the given roles. Must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rol := c.GetString("rol")
		for _, r := range roles {
			if rol == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para realizar esta acción"})
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user's id from the context.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
