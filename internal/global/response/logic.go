package response

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// stackTracer pkg/errors 的堆栈接口，Sentry 依赖它提取堆栈
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Error 业务错误：错误码、提示信息、调试用的原始错误
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
	Origin  string `json:"origin"`
	cause   error
	stack   pkgerrors.StackTrace
}

func newError(code int32, msg string) *Error {
	return &Error{
		Code:    code,
		Message: msg,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("code:%d, msg:%s", e.Code, e.Message)
}

// GetCode 实现 sentry.CodedError
func (e *Error) GetCode() int32 {
	return e.Code
}

// HTTPStatus 五位业务码取前三位作为 HTTP 状态码
func (e *Error) HTTPStatus() int {
	code := int(e.Code)
	for code >= 1000 {
		code /= 10
	}
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) StackTrace() pkgerrors.StackTrace {
	if e.stack != nil {
		return e.stack
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Is 错误码相同即视为同一错误
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithOrigin 附带原始错误（debug 模式下返回给前端），保留错误链和堆栈
func (e *Error) WithOrigin(err error) *Error {
	if err == nil {
		return e
	}
	if _, ok := err.(stackTracer); !ok {
		err = pkgerrors.WithStack(err)
	}
	newErr := &Error{
		Code:    e.Code,
		Message: e.Message,
		Origin:  fmt.Sprintf("%+v", err),
		cause:   err,
	}
	if st, ok := err.(stackTracer); ok {
		newErr.stack = st.StackTrace()
	}
	return newErr
}

// WithTips 追加提示信息（release 模式也可见）
func (e *Error) WithTips(details ...string) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message + " " + fmt.Sprintf("%v", details),
		Origin:  e.Origin,
		cause:   e.cause,
		stack:   e.stack,
	}
}
