package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gm2211/hudson-dashboard/response"
	"github.com/gm2211/hudson-dashboard/service"
)

// -------------------- 版本（Version）相关接口 --------------------

// GinHandleListVersions 版本列表
// @Summary 版本列表
// @Description 新版本在前
// @Tags 版本
// @Produce json
// @Success 200 {object} response.Response{data=[]service.VersionInfo}
// @Router /versions [get]
func (e *DashboardEngine) GinHandleListVersions(ctx *gin.Context) {
	list, err := e.SnapshotService.ListVersions(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetVersion 查看版本
// @Summary 查看版本
// @Tags 版本
// @Produce json
// @Param version path int true "版本号"
// @Success 200 {object} response.Response{data=service.VersionDetail}
// @Failure 404 {object} response.Response "版本不存在"
// @Router /versions/{version} [get]
func (e *DashboardEngine) GinHandleGetVersion(ctx *gin.Context) {
	v, ok := versionParam(ctx, "version")
	if !ok {
		return
	}
	d, err := e.SnapshotService.GetVersion(ctx.Request.Context(), v)
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(d))
}

// GinHandleDeleteVersion 删除版本
// @Summary 删除版本
// @Description 唯一剩下的版本不能删除；其它版本号保持不变
// @Tags 版本
// @Produce json
// @Param version path int true "版本号"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "唯一剩下的版本"
// @Failure 404 {object} response.Response "版本不存在"
// @Router /versions/{version} [delete]
func (e *DashboardEngine) GinHandleDeleteVersion(ctx *gin.Context) {
	v, ok := versionParam(ctx, "version")
	if !ok {
		return
	}
	if err := e.PublishService.DeleteVersion(ctx.Request.Context(), v); err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "deleted"))
}

// GinHandlePurgeHistory 清理历史
// @Summary 清理历史
// @Description 只保留最新版本
// @Tags 版本
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64} "data.deletedCount"
// @Router /versions/purge [post]
func (e *DashboardEngine) GinHandlePurgeHistory(ctx *gin.Context) {
	n, err := e.PublishService.PurgeHistory(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(map[string]int64{"deletedCount": n}))
}

// GinHandleRestoreVersion 恢复版本到草稿
// @Summary 恢复版本
// @Description 用指定版本覆盖草稿，需要再发布才会上线
// @Tags 版本
// @Produce json
// @Param version path int true "版本号"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "版本不存在"
// @Router /versions/{version}/restore [post]
func (e *DashboardEngine) GinHandleRestoreVersion(ctx *gin.Context) {
	v, ok := versionParam(ctx, "version")
	if !ok {
		return
	}
	if err := e.PublishService.RestoreVersion(ctx.Request.Context(), v); err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "restored"))
}

// GinHandleRestoreItems 从版本恢复选中的条目
// @Summary 恢复条目
// @Description 版本中不存在的 id 会被跳过，返回实际恢复的 id
// @Tags 版本
// @Accept json
// @Produce json
// @Param version path int true "版本号"
// @Param req body service.ItemSelection true "各集合要恢复的 id"
// @Success 200 {object} response.Response{data=service.ItemSelection}
// @Failure 400 {object} response.Response "没有选择任何条目"
// @Failure 404 {object} response.Response "版本不存在"
// @Router /versions/{version}/restore-items [post]
func (e *DashboardEngine) GinHandleRestoreItems(ctx *gin.Context) {
	v, ok := versionParam(ctx, "version")
	if !ok {
		return
	}
	var sel service.ItemSelection
	if err := ctx.ShouldBindJSON(&sel); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	restored, err := e.PublishService.RestoreItems(ctx.Request.Context(), v, sel)
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(restored))
}

// GinHandleDiffVersions 版本对比
// @Summary 版本对比
// @Description target 为版本号或 draft（当前草稿）
// @Tags 版本
// @Produce json
// @Param version path int true "起始版本号"
// @Param target path string true "目标版本号或 draft"
// @Success 200 {object} response.Response{data=board.DiffResult}
// @Failure 404 {object} response.Response "版本不存在"
// @Router /versions/{version}/diff/{target} [get]
func (e *DashboardEngine) GinHandleDiffVersions(ctx *gin.Context) {
	v, ok := versionParam(ctx, "version")
	if !ok {
		return
	}
	target, err := service.ParseVersionRef(ctx.Param("target"))
	if err != nil {
		e.fail(ctx, err)
		return
	}
	d, err := e.PublishService.DiffVersions(ctx.Request.Context(), v, target)
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(d))
}

// -------------------- 观看端 --------------------

// GinHandleLive 线上内容
// @Summary 线上内容
// @Description 最新发布版本（归一化后）；还没有发布过时返回 404
// @Tags 观看端
// @Produce json
// @Success 200 {object} response.Response{data=service.VersionDetail}
// @Failure 404 {object} response.Response "尚未发布"
// @Router /live [get]
func (e *DashboardEngine) GinHandleLive(ctx *gin.Context) {
	d, err := e.SnapshotService.GetLive(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(d))
}

// GinHandleWS 观看端 WebSocket，发布后推送 published 事件
// @Summary 观看端推送
// @Tags 观看端
// @Router /ws [get]
func (e *DashboardEngine) GinHandleWS(ctx *gin.Context) {
	e.WsServer.ServeWS(ctx.Writer, ctx.Request)
}
