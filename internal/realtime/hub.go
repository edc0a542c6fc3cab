package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Envelope 推送消息信封
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub 维护所有在线 WebSocket 连接。
// 连接按用户索引（同一用户可多端在线），聊天室订阅由客户端
// 通过 join_room / leave_room 控制帧维护。
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// NewHub 创建 Hub 并启动事件循环
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			if h.byUser[c.UserID] == nil {
				h.byUser[c.UserID] = make(map[*Client]struct{})
			}
			h.byUser[c.UserID][c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("WebSocket 连接注册", zap.String("user_id", c.UserID))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				if conns := h.byUser[c.UserID]; conns != nil {
					delete(conns, c)
					if len(conns) == 0 {
						delete(h.byUser, c.UserID)
					}
				}
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("WebSocket 连接注销", zap.String("user_id", c.UserID))
		}
	}
}

// Register 注册连接
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister 注销连接
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// PublishToUser 向某用户的所有在线连接推送
func (h *Hub) PublishToUser(userID string, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("推送消息序列化失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		c.trySend(data)
	}
}

// PublishToRoom 向订阅了某聊天室的所有连接推送，exceptUserID 排除发送者自身
func (h *Hub) PublishToRoom(roomID string, env Envelope, exceptUserID string) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("推送消息序列化失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.UserID == exceptUserID {
			continue
		}
		if c.inRoom(roomID) {
			c.trySend(data)
		}
	}
}

// Broadcast 向全部在线连接推送
func (h *Hub) Broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("推送消息序列化失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(data)
	}
}

// OnlineCount 在线用户数（按用户去重）
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser)
}
