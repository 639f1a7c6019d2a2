package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wikenfarma-system/internal/database/models"
	"wikenfarma-system/internal/utils"
)

const (
	CtxUserID        = "user_id"
	CtxUsername      = "username"
	CtxUserType      = "user_type"
	CtxInformatoreID = "informatore_id"
)

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(CtxUserID, claims.UserId)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxUserType, claims.UserType)
		if claims.InformatoreId != nil {
			c.Set(CtxInformatoreID, *claims.InformatoreId)
		}
		c.Next()
	}
}

// AdminOnly gates the management surface. Lifecycle transitions and
// calculation triggers are never reachable from representative tokens.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserType) != models.UserTypeAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// InformatoreOnly gates the representative dashboard, which is strictly
// read-only and scoped to the caller's own records.
func InformatoreOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserType) != models.UserTypeInformatore {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Informatore access required",
			})
			return
		}
		if _, ok := c.Get(CtxInformatoreID); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Token is not linked to an informatore profile",
			})
			return
		}
		c.Next()
	}
}
