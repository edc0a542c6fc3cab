package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client 一条 WebSocket 连接
type Client struct {
	UserID string
	Role   string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	roomMu sync.RWMutex
	rooms  map[string]struct{}
}

// NewClient 包装已升级的连接
func NewClient(hub *Hub, conn *websocket.Conn, userID, role string) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// trySend 非阻塞投递，缓冲满则丢弃（慢消费者不拖垮 Hub）
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) inRoom(roomID string) bool {
	c.roomMu.RLock()
	defer c.roomMu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

// controlFrame 客户端上行控制帧（订阅管理）
type controlFrame struct {
	Type   string `json:"type"` // join_room / leave_room
	RoomID string `json:"room_id"`
}

// ReadPump 读循环：处理订阅控制帧与心跳，连接断开时注销
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var frame controlFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}

		switch frame.Type {
		case "join_room":
			if frame.RoomID == "" {
				continue
			}
			c.roomMu.Lock()
			c.rooms[frame.RoomID] = struct{}{}
			c.roomMu.Unlock()
		case "leave_room":
			c.roomMu.Lock()
			delete(c.rooms, frame.RoomID)
			c.roomMu.Unlock()
		}
	}
}

// WritePump 写循环：下发推送消息并定期 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
