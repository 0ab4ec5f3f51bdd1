package dashboard

import (
	"encoding/json"

	"github.com/gm2211/hudson-dashboard/cons"
	"github.com/gm2211/hudson-dashboard/message"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 观看端上行消息处理。放在根包里，可以直接访问 Client 和 hub 内部的 channel。

// handlePing 回应心跳，其它消息忽略
func (h *WsServer) handlePing(client *Client, msg []byte) {
	var req message.Req
	if err := json.Unmarshal(msg, &req); err != nil {
		h.logger.Debug("invalid ws message", zap.String("client_id", client.ID), zap.Error(err))
		return
	}
	if req.Type != message.WsTypePing {
		return
	}
	b, err := json.Marshal(message.Event{Type: cons.EventPong, EventID: uuid.NewString(), PacketID: req.PacketID})
	if err != nil {
		return
	}
	h.sendTo(client, b)
}

// outbound 发给单个连接的消息
type outbound struct {
	client *Client
	msg    []byte
}

func (h *WsServer) sendTo(c *Client, msg []byte) {
	select {
	case h.direct <- outbound{client: c, msg: msg}:
	case <-h.done:
	}
}
