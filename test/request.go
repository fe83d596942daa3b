package test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"challenge-settlement-system/internal/global/jwt"
	"challenge-settlement-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Option 在调用 handler 前修改 gin.Context，例如设置路由参数或登录用户
type Option func(c *gin.Context)

func AsUser(userID uint, roleID int) Option {
	return func(c *gin.Context) {
		jwt.SetUserPayload(c, &jwt.Claims{Payload: jwt.Payload{UserID: userID, RoleID: roleID}})
	}
}

func WithParam(key, value string) Option {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: key, Value: value})
	}
}

// DoRequest 直接调用 handler，返回 HTTP 状态码和解析后的响应体
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, method string, request any, opts ...Option) (status int, resp response.ResponseBody) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body *bytes.Reader
	if request != nil {
		requestBytes, err := json.Marshal(request)
		require.NoError(t, err)
		body = bytes.NewReader(requestBytes)
	} else {
		body = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, "/test", body)
	c.Request.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(c)
	}

	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}
