package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gm2211/hudson-dashboard/response"
)

// -------------------- 草稿（Draft）相关接口 --------------------

// GinHandleDraftStatus 草稿状态
// @Summary 草稿状态
// @Description 当前草稿与最新发布版本的对比；从未发布过时所有区块都视为有修改
// @Tags 草稿
// @Produce json
// @Success 200 {object} response.Response{data=service.DraftStatus}
// @Failure 500 {object} response.Response "存储错误"
// @Router /draft/status [get]
func (e *DashboardEngine) GinHandleDraftStatus(ctx *gin.Context) {
	ds, err := e.PublishService.GetDraftStatus(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(ds))
}

// GinHandlePublish 发布草稿
// @Summary 发布草稿
// @Description 物理删除待删除条目，把草稿保存为新版本并通知观看端
// @Tags 草稿
// @Produce json
// @Success 200 {object} response.Response{data=service.PublishResult}
// @Failure 500 {object} response.Response "存储错误"
// @Router /draft/publish [post]
func (e *DashboardEngine) GinHandlePublish(ctx *gin.Context) {
	res, err := e.PublishService.Publish(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(res, "published"))
}

// GinHandleDiscard 放弃草稿
// @Summary 放弃草稿
// @Description 用最新发布版本覆盖草稿；还没有发布过时不做任何事
// @Tags 草稿
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response "存储错误"
// @Router /draft/discard [post]
func (e *DashboardEngine) GinHandleDiscard(ctx *gin.Context) {
	if err := e.PublishService.Discard(ctx.Request.Context()); err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "discarded"))
}
