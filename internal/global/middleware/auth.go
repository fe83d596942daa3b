package middleware

import (
	"strings"

	"challenge-settlement-system/internal/global/jwt"
	"challenge-settlement-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

// Auth 校验 Bearer token，RoleID 低于 minRoleID 拒绝
func Auth(minRoleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		payload, valid := jwt.ParseToken(token)
		if !valid {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		if payload.RoleID < minRoleID {
			response.Fail(c, response.ErrUnauthorized)
			return
		}
		jwt.SetUserPayload(c, payload)
		c.Next()
	}
}
