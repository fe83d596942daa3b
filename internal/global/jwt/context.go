package jwt

import (
	"github.com/gin-gonic/gin"
)

const payloadKey = "payload"

func SetUserPayload(c *gin.Context, claims *Claims) {
	c.Set(payloadKey, claims)
}

func GetUserPayload(c *gin.Context) (userPayload *Claims, exist bool) {
	payload, _ := c.Get(payloadKey)
	userPayload, exist = payload.(*Claims)
	return
}
