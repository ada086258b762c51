package ws

import (
	"context"
	"log"
	"sync"
)

// Event 推送给订阅者的事件
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// roomMessage 带房间号的待广播事件
type roomMessage struct {
	room  string
	event Event
}

// Hub 维护按影片分组的在线连接，向同房间连接广播事件
// 投递语义是至多一次：不重试、不留存，晚加入的连接收不到之前的事件
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 运行事件循环，ctx 取消时关闭全部连接后退出
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Println("[WS] Hub 已停止")
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			count := len(h.rooms[client.room])
			h.mu.Unlock()
			log.Printf("[WS] 连接加入房间 %s (当前 %d)", client.room, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] 连接离开房间 %s", client.room)

		case msg := <-h.broadcast:
			h.dispatch(msg)
		}
	}
}

// Join 注册一个已升级的连接
func (h *Hub) Join(client *Client) {
	h.register <- client
}

// Leave 注销连接
func (h *Hub) Leave(client *Client) {
	h.unregister <- client
}

// Publish 向影片房间广播事件，通道满时丢弃（尽力投递）
func (h *Hub) Publish(room, event string, data interface{}) {
	select {
	case h.broadcast <- roomMessage{room: room, event: Event{Event: event, Data: data}}:
	default:
		log.Printf("[WS] 广播通道已满，丢弃事件 (房间: %s)", room)
	}
}

// RoomCount 房间内当前连接数
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// dispatch 把事件发给房间内的每个连接
// 发送通道已满的连接视为掉队，直接剔除，不能阻塞其他房间的广播
func (h *Hub) dispatch(msg roomMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dead []*Client
	for client := range h.rooms[msg.room] {
		select {
		case client.send <- msg.event:
		default:
			dead = append(dead, client)
		}
	}

	for _, client := range dead {
		close(client.send)
		delete(h.rooms[msg.room], client)
	}
	if len(h.rooms[msg.room]) == 0 {
		delete(h.rooms, msg.room)
	}
}

// closeAll 停机时关闭全部连接
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, room)
	}
}
