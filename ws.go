package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小（观看端只发心跳）
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 看板屏幕可能部署在任意域名下
	},
}

// Client 一个观看端的 websocket 连接
type Client struct {
	hub *WsServer

	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// ID 连接 ID，用于日志
	ID string
}

// readPump 读取观看端上行消息（心跳），连接断开时注销
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("ws read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}
		c.hub.handleMessage(c, msg)
	}
}

// writePump 把 hub 的消息写到连接，并定时发送 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条事件一帧，观看端按帧解析 JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.logger.Debug("ws ping failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
		}
	}
}

// trySend 非阻塞投递；缓冲区满返回 false
func (c *Client) trySend(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WsServer 观看端连接管理：发布事件广播给所有在线屏幕
type WsServer struct {
	clients map[*Client]bool

	broadcast  chan []byte
	direct     chan outbound
	register   chan *Client
	unregister chan *Client
	// done Run 退出后关闭
	done chan struct{}
	mu   sync.RWMutex

	logger *zap.Logger
}

func NewWsServer(logger *zap.Logger) *WsServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WsServer{
		broadcast:  make(chan []byte, 16),
		direct:     make(chan outbound, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
	return h
}

// Run hub 主循环，ctx 结束时断开所有连接后返回
func (h *WsServer) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws client registered", zap.String("client_id", client.ID), zap.Int("clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case out := <-h.direct:
			// 只投递给仍在线的连接，send 可能已被关闭
			h.mu.RLock()
			if h.clients[out.client] {
				out.client.trySend(out.msg)
			}
			h.mu.RUnlock()

		case msg := <-h.broadcast:
			// 不能在 RLock 下修改 map / close channel
			var toRemove []*Client
			h.mu.RLock()
			for client := range h.clients {
				if !client.trySend(msg) {
					toRemove = append(toRemove, client)
				}
			}
			h.mu.RUnlock()

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; !ok {
						continue
					}
					delete(h.clients, client)
					close(client.send)
					h.logger.Warn("ws client too slow, dropped", zap.String("client_id", client.ID))
				}
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast 推送给所有观看端；hub 已停止时直接丢弃
func (h *WsServer) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount 在线连接数
func (h *WsServer) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WsServer) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// handleMessage 上行消息目前只有心跳
func (h *WsServer) handleMessage(client *Client, msg []byte) {
	h.handlePing(client, msg)
}

// ServeWS 处理ws的请求
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
		ID:   uuid.NewString(),
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	// 不要 select{} 永久阻塞 handler；连接生命周期由 readPump/writePump 控制。
}
