package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gm2211/hudson-dashboard/middleware"
	"github.com/gm2211/hudson-dashboard/response"
	"github.com/gm2211/hudson-dashboard/service"
	"go.uber.org/zap"
)

/*
	HTTP 接口只做参数解析与错误码映射，业务都在 service 里。
	也可以不注册这里的路由，直接调用 engine 上的 service。
*/

// RegisterRoutes 在 r 上注册全部接口（编辑端 + 观看端 + WS）
//
// 使用示例：
//
//	api := r.Group("/api/v1")
//	engine.RegisterRoutes(api)
func (e *DashboardEngine) RegisterRoutes(r gin.IRouter) {
	// 草稿
	draft := r.Group("/draft")
	draft.GET("/status", e.GinHandleDraftStatus)
	draft.POST("/publish", e.GinHandlePublish)
	draft.POST("/discard", e.GinHandleDiscard)

	// 版本历史
	versions := r.Group("/versions")
	versions.GET("", e.GinHandleListVersions)
	versions.POST("/purge", e.GinHandlePurgeHistory)
	versions.GET("/:version", e.GinHandleGetVersion)
	versions.DELETE("/:version", e.GinHandleDeleteVersion)
	versions.POST("/:version/restore", e.GinHandleRestoreVersion)
	versions.POST("/:version/restore-items", e.GinHandleRestoreItems)
	versions.GET("/:version/diff/:target", e.GinHandleDiffVersions)

	// 草稿条目
	registerCollection(e, r, "/status", e.EntityService.Status())
	registerCollection(e, r, "/announcements", e.EntityService.Announcements())
	registerCollection(e, r, "/advisories", e.EntityService.Advisories())
	r.GET("/config", e.GinHandleGetConfig)
	r.PUT("/config", e.GinHandleSaveConfig)

	// 观看端
	r.GET("/live", e.GinHandleLive)
	r.GET("/ws", e.GinHandleWS)
}

// fail 把 service 错误映射为 HTTP 状态码 + 业务码
func (e *DashboardEngine) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, response.Error(response.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
	default:
		e.logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(ctx)),
			zap.String("route", ctx.FullPath()),
			zap.Error(err),
		)
		_ = ctx.Error(err)
		msg := "storage failure"
		if e.config.Service.Debug {
			msg = err.Error()
		}
		ctx.JSON(http.StatusInternalServerError, response.Error(response.CodeStorageError, msg))
	}
}

func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, msg))
}

// versionParam 解析路径上的版本号（正整数）
func versionParam(ctx *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil || v <= 0 {
		badRequest(ctx, "invalid "+name)
		return 0, false
	}
	return v, true
}

// idParam 解析路径上的条目 id
func idParam(ctx *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(ctx, "invalid id")
		return 0, false
	}
	return id, true
}
