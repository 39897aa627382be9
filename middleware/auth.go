package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Forge/pkg/context"
	"Forge/pkg/jwt"
	"Forge/pkg/log"
	"Forge/pkg/response"
)

// BearerToken 优先取 Authorization 头，websocket 握手时浏览器无法设置头，退而取 query 中的 token
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Auth 必须登录
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, response.ErrAuthRequired.Msg)
			return
		}

		claims, err := jwt.ParseToken(secret, jwt.TypeAccess, token)
		if err != nil {
			log.L.Debug("reject token", zap.Error(err))
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(context.CtxUserID, claims.UserID)

		c.Next()
	}
}

// OptionalAuth 令牌缺失或无效时按匿名处理
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c.Request); token != "" {
			if claims, err := jwt.ParseToken(secret, jwt.TypeAccess, token); err == nil {
				c.Set(context.CtxUserID, claims.UserID)
			}
		}
		c.Next()
	}
}
