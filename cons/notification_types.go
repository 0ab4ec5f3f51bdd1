package cons

// 推送给看板观看端的事件类型（type）
const (
	EventPublished = "published" // 新版本已发布，观看端应重新拉取 /live
	EventPong      = "pong"      // 对上行 ping 的应答
)

// DefaultNotifyChannel 多实例部署时发布事件所用的 Redis 频道
const DefaultNotifyChannel = "dashboard:published"
