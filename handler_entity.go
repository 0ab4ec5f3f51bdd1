package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/repository"
	"github.com/gm2211/hudson-dashboard/response"
	"github.com/gm2211/hudson-dashboard/service"
)

// -------------------- 草稿条目（状态/公告/提示）相关接口 --------------------

// registerCollection 三个集合共用一套路由
func registerCollection[R repository.Row, I any](e *DashboardEngine, r gin.IRouter, path string, svc *service.CollectionService[R, I]) {
	g := r.Group(path)
	g.GET("", listItems(e, svc))
	g.POST("", createItem(e, svc))
	g.GET("/:id", getItem(e, svc))
	g.PUT("/:id", updateItem(e, svc))
	g.DELETE("/:id", markItem(e, svc, true))
	g.POST("/:id/unmark", markItem(e, svc, false))
}

// listItems 草稿条目列表（包含待删除的条目）
// @Summary 草稿条目列表
// @Tags 草稿条目
// @Produce json
// @Success 200 {object} response.Response{data=[]board.StatusItem}
// @Router /status [get]
// @Router /announcements [get]
// @Router /advisories [get]
func listItems[R repository.Row, I any](e *DashboardEngine, svc *service.CollectionService[R, I]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		items, err := svc.List(ctx.Request.Context())
		if err != nil {
			e.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(items))
	}
}

// getItem 查看草稿条目
// @Summary 查看草稿条目
// @Tags 草稿条目
// @Produce json
// @Param id path int true "条目 id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "条目不存在"
// @Router /status/{id} [get]
// @Router /announcements/{id} [get]
// @Router /advisories/{id} [get]
func getItem[R repository.Row, I any](e *DashboardEngine, svc *service.CollectionService[R, I]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := idParam(ctx)
		if !ok {
			return
		}
		it, err := svc.Get(ctx.Request.Context(), id)
		if err != nil {
			e.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(it))
	}
}

// createItem 新建草稿条目，id 由服务端分配
// @Summary 新建草稿条目
// @Tags 草稿条目
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "参数错误"
// @Router /status [post]
// @Router /announcements [post]
// @Router /advisories [post]
func createItem[R repository.Row, I any](e *DashboardEngine, svc *service.CollectionService[R, I]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var in I
		if err := ctx.ShouldBindJSON(&in); err != nil {
			badRequest(ctx, err.Error())
			return
		}
		it, err := svc.Create(ctx.Request.Context(), in)
		if err != nil {
			e.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(it))
	}
}

// updateItem 更新草稿条目
// @Summary 更新草稿条目
// @Tags 草稿条目
// @Accept json
// @Produce json
// @Param id path int true "条目 id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "参数错误"
// @Failure 404 {object} response.Response "条目不存在"
// @Router /status/{id} [put]
// @Router /announcements/{id} [put]
// @Router /advisories/{id} [put]
func updateItem[R repository.Row, I any](e *DashboardEngine, svc *service.CollectionService[R, I]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := idParam(ctx)
		if !ok {
			return
		}
		var in I
		if err := ctx.ShouldBindJSON(&in); err != nil {
			badRequest(ctx, err.Error())
			return
		}
		it, err := svc.Update(ctx.Request.Context(), id, in)
		if err != nil {
			e.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(it))
	}
}

// markItem DELETE 只做标记，发布时才物理删除；unmark 撤销标记
// @Summary 标记删除 / 撤销标记
// @Tags 草稿条目
// @Produce json
// @Param id path int true "条目 id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "条目不存在"
// @Router /status/{id} [delete]
// @Router /status/{id}/unmark [post]
// @Router /announcements/{id} [delete]
// @Router /announcements/{id}/unmark [post]
// @Router /advisories/{id} [delete]
// @Router /advisories/{id}/unmark [post]
func markItem[R repository.Row, I any](e *DashboardEngine, svc *service.CollectionService[R, I], marked bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := idParam(ctx)
		if !ok {
			return
		}
		var err error
		if marked {
			err = svc.MarkDeleted(ctx.Request.Context(), id)
		} else {
			err = svc.UnmarkDeleted(ctx.Request.Context(), id)
		}
		if err != nil {
			e.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response.Success(map[string]any{"id": id, "markedForDeletion": marked}))
	}
}

// GinHandleGetConfig 读取配置
// @Summary 读取配置
// @Description 尚未配置时 data 为 null
// @Tags 配置
// @Produce json
// @Success 200 {object} response.Response{data=board.Config}
// @Router /config [get]
func (e *DashboardEngine) GinHandleGetConfig(ctx *gin.Context) {
	c, err := e.EntityService.GetConfig(ctx.Request.Context())
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(c))
}

// GinHandleSaveConfig 保存配置
// @Summary 保存配置
// @Tags 配置
// @Accept json
// @Produce json
// @Param req body board.Config true "配置（速度单位秒，0 表示静态）"
// @Success 200 {object} response.Response{data=board.Config}
// @Failure 400 {object} response.Response "参数错误"
// @Router /config [put]
func (e *DashboardEngine) GinHandleSaveConfig(ctx *gin.Context) {
	var in board.Config
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	c, err := e.EntityService.SaveConfig(ctx.Request.Context(), in)
	if err != nil {
		e.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(c))
}
