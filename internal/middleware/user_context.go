package middleware

import (
	"issue-tracker/internal/database"
	"issue-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uidRaw := sess.Get("user_id"); uidRaw != nil {
			if uid, ok := uidRaw.(uint); ok && uid > 0 {
				var account models.Account
				if err := database.DB.First(&account, uid).Error; err == nil {
					c.Set("CurrentAccount", account)
				}
			}
		}

		c.Next()
	}
}
