package middleware

import (
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// ExtractUserID guards routes that need an authenticated user and exposes
// it as user_id_validated for the logger and idempotency middleware.
func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		c.Set("user_id_validated", userID)
		c.Next()
	}
}
