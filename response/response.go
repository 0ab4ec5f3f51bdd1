package response

// Response 统一响应结构
type Response struct {
	Code int         `json:"code" example:"0"`                    // 业务状态码
	Msg  string      `json:"msg" example:"success"`               // 提示消息
	Data interface{} `json:"data,omitempty" swaggertype:"object"` // 响应数据
}

// 业务状态码定义
// 使用说明：
// - 成功：HTTP 200 + CodeSuccess
// - 失败：HTTP 状态码与业务码一一对应（400/404/429/500），便于网关和前端直接判断
const (
	CodeSuccess         = 0     // 成功
	CodeParamError      = 10001 // 参数错误 / 前置条件不满足
	CodeNotFound        = 10002 // 版本或条目不存在
	CodeTooManyRequests = 10003 // 请求过于频繁
	CodeStorageError    = 20001 // 存储失败，整个操作未生效
	CodeInternalError   = 99999 // 内部错误
)

// Success 成功响应
func Success(data interface{}, args ...string) *Response {
	msg := "success"
	for _, arg := range args {
		msg = arg
	}
	return &Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	}
}

// Error 错误响应
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
