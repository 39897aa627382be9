package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeAuthRequired    = http.StatusUnauthorized
	CodeNotFound        = http.StatusNotFound
	CodeValidation      = http.StatusUnprocessableEntity
	CodeTooFrequent     = http.StatusTooManyRequests
	CodeOperationFailed = http.StatusBadGateway
)

// 错误分类，errors.Is 按 Code 比较
var (
	ErrAuthRequired    = NewError(CodeAuthRequired, "login required")
	ErrValidation      = NewError(CodeValidation, "invalid input")
	ErrNotFound        = NewError(CodeNotFound, "not found")
	ErrTooFrequent     = NewError(CodeTooFrequent, "operation in progress, try again")
	ErrOperationFailed = NewError(CodeOperationFailed, "operation failed")
)

type BizError struct {
	Code  int
	Msg   string
	Cause error
}

func (e *BizError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

func (e *BizError) Is(target error) bool {
	var t *BizError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewError(code int, msg string) *BizError {
	return &BizError{
		Code: code,
		Msg:  msg,
	}
}

// Validation 本地校验失败，发生在任何远端调用之前
func Validation(msg string) *BizError {
	return NewError(CodeValidation, msg)
}

func NotFound(msg string) *BizError {
	return NewError(CodeNotFound, msg)
}

// OperationFailed 包装远端调用失败（含超时）
func OperationFailed(msg string, cause error) *BizError {
	if msg == "" {
		msg = ErrOperationFailed.Msg
	}
	return &BizError{Code: CodeOperationFailed, Msg: msg, Cause: cause}
}

// CodeOf 取错误码，非 BizError 视为 500
func CodeOf(err error) int {
	var be *BizError
	if errors.As(err, &be) {
		return be.Code
	}
	return http.StatusInternalServerError
}

func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.JSON(http.StatusInternalServerError, Response{
					Code: 500,
					Msg:  "internal error",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			var be *BizError
			if errors.As(err, &be) {
				Fail(c, be.Code, be.Msg)
			} else {
				Fail(c, 500, err.Error())
			}
			c.Abort()
		}
	}
}

func Abort(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
		Data: nil,
	})
}
