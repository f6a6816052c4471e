package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/schedule"
	"tutoros/backend/internal/service"
	"tutoros/backend/pkg/response"
)

// OccurrenceHandler 课程场次 HTTP 处理器
type OccurrenceHandler struct {
	occurrenceSvc service.OccurrenceService
}

// NewOccurrenceHandler 创建 OccurrenceHandler
func NewOccurrenceHandler(occurrenceSvc service.OccurrenceService) *OccurrenceHandler {
	return &OccurrenceHandler{occurrenceSvc: occurrenceSvc}
}

// CreateOccurrence 创建单次课程
// POST /api/v1/occurrences
func (h *OccurrenceHandler) CreateOccurrence(c *gin.Context) {
	var req dto.CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	occ, err := h.occurrenceSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.Created(c, occ)
}

// CreateSeries 创建每周重复的系列课程
// POST /api/v1/occurrences/series
func (h *OccurrenceHandler) CreateSeries(c *gin.Context) {
	var req dto.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	series, err := h.occurrenceSvc.CreateSeries(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.Created(c, series)
}

// ListOccurrences 按日期范围查询课程
// GET /api/v1/occurrences?start=&end=&owner_id=&timezone=
func (h *OccurrenceHandler) ListOccurrences(c *gin.Context) {
	var req dto.OccurrenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.occurrenceSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetOccurrence 获取课程详情
// GET /api/v1/occurrences/:id
func (h *OccurrenceHandler) GetOccurrence(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	occ, err := h.occurrenceSvc.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, occ)
}

// UpdateOccurrence 编辑课程；系列成员需要 scope=this|future
// PUT /api/v1/occurrences/:id
func (h *OccurrenceHandler) UpdateOccurrence(c *gin.Context) {
	var req dto.UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.occurrenceSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleOccurrenceError(c, err, result)
		return
	}
	response.OK(c, result)
}

// DeleteOccurrence 删除单节课程（不影响同系列其他课程）
// DELETE /api/v1/occurrences/:id
func (h *OccurrenceHandler) DeleteOccurrence(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.occurrenceSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, nil)
}

// DragOccurrence 拖拽课程到新的日期/时间
// POST /api/v1/occurrences/:id/drag
func (h *OccurrenceHandler) DragOccurrence(c *gin.Context) {
	var req dto.DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.occurrenceSvc.Drag(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleOccurrenceError(c, err, result)
		return
	}
	response.OK(c, result)
}

// ResizeOccurrence 拖动课程下边缘调整结束时间
// POST /api/v1/occurrences/:id/resize
func (h *OccurrenceHandler) ResizeOccurrence(c *gin.Context) {
	var req dto.ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.occurrenceSvc.Resize(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleOccurrenceError(c, err, result)
		return
	}
	response.OK(c, result)
}

// RequestReschedule 提交调课申请
// POST /api/v1/occurrences/:id/reschedule-request
func (h *OccurrenceHandler) RequestReschedule(c *gin.Context) {
	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	occ, err := h.occurrenceSvc.RequestReschedule(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, occ)
}

// ApproveReschedule 批准调课申请
// POST /api/v1/occurrences/:id/reschedule-approve
func (h *OccurrenceHandler) ApproveReschedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	occ, err := h.occurrenceSvc.ApproveReschedule(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, occ)
}

// RejectReschedule 拒绝调课申请
// POST /api/v1/occurrences/:id/reschedule-reject
func (h *OccurrenceHandler) RejectReschedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	occ, err := h.occurrenceSvc.RejectReschedule(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleOccurrenceError(c, err, nil)
		return
	}
	response.OK(c, occ)
}

// handleOccurrenceError 统一处理课程模块业务错误
// result 非空时（需要选择编辑范围）随 409 一并返回候选结果
func (h *OccurrenceHandler) handleOccurrenceError(c *gin.Context, err error, result *dto.EditResultResponse) {
	switch {
	case errors.Is(err, service.ErrOccurrenceNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrEditScopeRequired):
		response.Conflict(c, 20002, "该课程属于重复系列，请选择仅修改此次或此次及以后", result)
	case errors.Is(err, schedule.ErrNotInSeries):
		response.BadRequest(c, 20003, "该课程不属于任何系列")
	case errors.Is(err, schedule.ErrInvalidEditScope):
		response.BadRequest(c, 20004, "编辑范围无效")
	case errors.Is(err, schedule.ErrSeriesEndBeforeStart):
		response.BadRequest(c, 20005, "系列结束日期早于开始日期")
	case errors.Is(err, schedule.ErrSeriesTooLong):
		response.BadRequest(c, 20006, "系列课程数量超过上限")
	case errors.Is(err, schedule.ErrUnsupportedFrequency):
		response.BadRequest(c, 20007, "不支持的重复规则")
	case errors.Is(err, service.ErrNoPendingReschedule):
		response.BadRequest(c, 20008, "该课程没有待处理的调课申请")
	case errors.Is(err, service.ErrOccurrenceInactive):
		response.BadRequest(c, 20009, "已取消或已完成的课程不能申请调课")
	case handleCommonError(c, err):
	default:
		response.InternalError(c)
	}
}
