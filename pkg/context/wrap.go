package context

import (
	"Forge/pkg/response"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
)

type HandlerFunc func(*gin.Context) error

func Wrap(h func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {

			// 如果已经写过响应，直接返回
			if c.Writer.Written() {
				return
			}
			// 业务错误
			var be *response.BizError
			if errors.As(err, &be) {
				c.JSON(http.StatusOK, response.Response{
					Code: be.Code,
					Msg:  be.Msg,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, response.Response{
				Code: 500,
				Msg:  err.Error(),
			})
		}
	}
}

// GetUserID 取已认证用户，未登录返回 ErrAuthRequired
func GetUserID(c *gin.Context) (string, error) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", response.ErrAuthRequired
	}

	uid, ok := v.(string)
	if !ok || uid == "" {
		return "", response.ErrAuthRequired
	}

	return uid, nil
}

// OptionalUserID 匿名访问时返回空串
func OptionalUserID(c *gin.Context) string {
	uid, _ := GetUserID(c)
	return uid
}
