package handler

import (
	"github.com/gin-gonic/gin"

	"Forge/config"
	"Forge/middleware"
	"Forge/pkg/context"
	"Forge/socket"
)

// LiveHandler 实时视图入口，匿名连接只能订阅不能写
type LiveHandler struct {
	Config *config.Config
	Hub    *socket.Hub
}

func (h *LiveHandler) RegisterRouter(r gin.IRouter) {
	optional := middleware.OptionalAuth([]byte(h.Config.Jwt.Secret))
	r.GET("/v1/live", optional, context.Wrap(h.Conn))
}

// Conn 升级为 websocket，阻塞到连接关闭
func (h *LiveHandler) Conn(c *gin.Context) error {
	return h.Hub.Serve(c.Writer, c.Request, context.OptionalUserID(c))
}
