package middleware

import (
	"net/http"

	"issue-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Logical failures ride in the body with HTTP 200; clients branch on
// the success flag, not the status code.

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		userID := sess.Get("user_id")
		if userID == nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	roleSet := map[models.Role]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := sessions.Default(c)
		roleVal := sess.Get("role")
		roleStr, ok := roleVal.(string)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "authentication required"})
			c.Abort()
			return
		}
		role := models.Role(roleStr)

		if _, ok := roleSet[role]; !ok {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
