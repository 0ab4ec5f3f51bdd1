package message

// WS 上行消息类型
const (
	WsTypePing = "ping" // 心跳（client -> server），服务端回 pong
)

// Req 观看端上行消息。观看端只读，除心跳外的消息都会被忽略。
type Req struct {
	Type     string `json:"type"`      // ping
	PacketID string `json:"packet_id"` // 可选：客户端匹配应答
}
