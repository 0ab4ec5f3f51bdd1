package message

import "time"

// Event 下行事件：服务端 -> 观看端（WS）以及实例之间（Redis 频道）
type Event struct {
	Type        string    `json:"type"`                   // published / pong
	EventID     string    `json:"event_id"`               // 事件 ID（uuid），观看端用于去重
	Version     int       `json:"version,omitempty"`      // 发布的版本号
	PublishedAt time.Time `json:"published_at,omitempty"` // 发布时间
	PacketID    string    `json:"packet_id,omitempty"`    // 回显上行 ping 的 packet_id
}
