package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errTokenMissing = apperror.New(apperror.CodeUnauthorized, "token not found", http.StatusUnauthorized)
	errTokenInvalid = apperror.New(apperror.CodeUnauthorized, "invalid token", http.StatusUnauthorized)
	errTokenExpired = apperror.New(apperror.CodeUnauthorized, "token expired", http.StatusUnauthorized)
)

// AuthMiddleware validates an HS256 bearer token issued by the identity
// service and copies its tenant claims into the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, errTokenMissing)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, errTokenExpired)
				return
			}
			abortWith(c, errTokenInvalid)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, errTokenInvalid)
			return
		}

		values := map[string]string{}
		for _, name := range []string{"user_id", "company_id", "employee_id"} {
			v, _ := claims[name].(string)
			if v == "" {
				abortWith(c, errTokenInvalid.WithDetails(map[string]any{"missing_claim": name}))
				return
			}
			values[name] = v
		}
		role, _ := claims["role"].(string)

		c.Set("user_id", values["user_id"])
		c.Set("employee_id", values["employee_id"])
		c.Set("company_id", values["company_id"])
		c.Set("role", role)

		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	response.FromError(c, err)
	c.Abort()
}
