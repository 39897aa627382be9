package socket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"

	"Forge/config"
	"Forge/gateway"
	"Forge/pkg/log"
	"Forge/pkg/snowflake"
	"Forge/service"
	"Forge/types"
	"Forge/view"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub 管理本实例上的全部实时会话
type Hub struct {
	Gateway   gateway.Gateway
	Publisher service.ActivityPublisher
	Conf      *config.Config

	sessions cmap.ConcurrentMap[string, *Session]
	log      *zap.Logger
}

func NewHub(gw gateway.Gateway, pub service.ActivityPublisher, conf *config.Config) *Hub {
	return &Hub{
		Gateway:   gw,
		Publisher: pub,
		Conf:      conf,
		sessions:  cmap.New[*Session](),
		log:       log.Named("live"),
	}
}

// Serve 升级连接并阻塞到会话结束；userID 为空表示匿名，只能读
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return err
	}

	s := newSession(h, strconv.FormatInt(snowflake.GenID(), 10), userID, conn)
	h.sessions.Set(s.id, s)
	liveSessions.Inc()
	s.log.Info("session open")

	s.run()

	h.sessions.Remove(s.id)
	liveSessions.Dec()
	s.log.Info("session closed")
	return nil
}

// Sessions 在线会话数
func (h *Hub) Sessions() int {
	return h.sessions.Count()
}

// Shutdown 通知全部会话关闭
func (h *Hub) Shutdown() {
	for _, s := range h.sessions.Items() {
		s.Close()
	}
}

func (h *Hub) viewOptions(s *Session) []view.Option {
	opts := []view.Option{view.WithLogger(s.log)}
	if h.Conf != nil {
		opts = append(opts, view.WithTimeout(h.Conf.Gateway.Timeout()))
	}
	return opts
}

func (h *Hub) publish(ctx context.Context, a types.Activity) {
	if h.Publisher == nil {
		return
	}
	h.Publisher.Publish(ctx, a)
}
