package socket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 256
	maxViews       = 64
)

// liveView 会话上挂载的视图
type liveView interface {
	Mount(ctx context.Context) error
	Unmount()
}

// Session 一条 websocket 连接。
//
// 只有 writePump 写连接；视图回调经 send 投递。连接关闭时卸载全部视图。
type Session struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	log    *zap.Logger

	views cmap.ConcurrentMap[string, liveView]
	send  chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	// 异步处理中的写操作
	tasks conc.WaitGroup
}

func newSession(h *Hub, id, userID string, conn *websocket.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    h,
		log:    h.log.With(zap.String("session", id), zap.String("user", userID)),
		views:  cmap.New[liveView](),
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.userID
}

// Close 触发关闭，run 负责收尾
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) run() {
	var pumps conc.WaitGroup
	pumps.Go(s.writePump)

	s.readPump()

	s.cancel()
	s.tasks.Wait()
	s.unmountAll()
	pumps.Wait()
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read message failed", zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		in, ok := ParseInbound(data)
		if !ok {
			s.push(errorFrame("", errMalformed))
			continue
		}
		framesReceived.WithLabelValues(in.Event).Inc()
		s.dispatch(in)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.cancel()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.cancel()
				return
			}
		}
	}
}

// push 非阻塞投递；客户端消费过慢时直接断开
func (s *Session) push(frame Outbound) {
	if s.ctx.Err() != nil {
		return
	}
	b, err := encode(frame)
	if err != nil {
		s.log.Error("encode frame failed", zap.String("event", frame.Event), zap.Error(err))
		return
	}
	select {
	case s.send <- b:
	case <-s.ctx.Done():
	default:
		s.log.Warn("send buffer full, closing session")
		s.cancel()
	}
}

// attach 同一 ref 重复挂载时先卸载旧视图
func (s *Session) attach(ref string, v liveView) error {
	if old, ok := s.views.Pop(ref); ok {
		old.Unmount()
		liveViews.Dec()
	}
	if s.views.Count() >= maxViews {
		v.Unmount()
		return errTooManyViews
	}
	s.views.Set(ref, v)
	liveViews.Inc()
	return v.Mount(s.ctx)
}

func (s *Session) detach(ref string) bool {
	v, ok := s.views.Pop(ref)
	if !ok {
		return false
	}
	v.Unmount()
	liveViews.Dec()
	return true
}

func (s *Session) unmountAll() {
	for _, ref := range s.views.Keys() {
		s.detach(ref)
	}
}

// Views 当前挂载的视图数
func (s *Session) Views() int {
	return s.views.Count()
}
