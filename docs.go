// Package dashboard 看板内容的草稿/发布版本管理
// @title Hudson Dashboard API
// @version 1.0
// @description 编辑端修改草稿，发布后生成不可变版本；观看端读取最新版本并通过 WebSocket 接收发布通知
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 资源不存在 |
// @description | 10003 | 请求过于频繁 |
// @description | 20001 | 存储错误 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 成功
// @description - **400**: 参数错误
// @description - **404**: 版本或条目不存在
// @description - **429**: 请求过于频繁
// @description - **500**: 存储错误
// @description
// @description ## 响应格式
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:6789
// @BasePath /api/v1
// @schemes http https
package dashboard
