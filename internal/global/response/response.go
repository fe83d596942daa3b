package response

import (
	"errors"
	"net/http"

	"challenge-settlement-system/config"
	"challenge-settlement-system/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

// ErrorContextKey gin.Context 中存放错误对象的键
const ErrorContextKey = "error"

// ResponseContextKey gin.Context 中存放响应体的键，供请求日志使用
const ResponseContextKey = "response_body"

type ResponseBody struct {
	Code   int32  `json:"code"`
	Msg    string `json:"msg"`
	Origin string `json:"origin,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func Success(c *gin.Context, data ...any) {
	body := ResponseBody{Code: 200, Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.Set(ResponseContextKey, body)
	c.JSON(http.StatusOK, body)
}

// Fail 非 *Error 的错误按内部错误处理；5xx 上报 Sentry
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrInternal.WithOrigin(err)
	}
	body := ResponseBody{Code: e.Code, Msg: e.Message}
	if config.Get().Mode == config.ModeDebug {
		body.Origin = e.Origin
	}
	c.Set(ErrorContextKey, e)
	c.Set(ResponseContextKey, body)
	sentry.CaptureException(c, e)
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}

// Recovery 配合 defer 使用，把 panic 转为 500 响应
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		var err error
		switch v := r.(type) {
		case error:
			err = v
		default:
			err = errors.New(http.StatusText(http.StatusInternalServerError))
		}
		Fail(c, ErrInternal.WithOrigin(err))
	}
}
