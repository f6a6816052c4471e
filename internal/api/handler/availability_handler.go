package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/service"
	"tutoros/backend/pkg/response"
)

// AvailabilityHandler 可授课时间 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// ListSlots 查询每周可授课时段
// GET /api/v1/availability?owner_id=
func (h *AvailabilityHandler) ListSlots(c *gin.Context) {
	var req dto.AvailabilityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slots, err := h.availabilitySvc.ListSlots(c.Request.Context(), actor, req.OwnerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, gin.H{"list": slots})
}

// ReplaceSlots 整体替换每周可授课时段
// PUT /api/v1/availability
func (h *AvailabilityHandler) ReplaceSlots(c *gin.Context) {
	var req dto.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slots, err := h.availabilitySvc.ReplaceSlots(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, gin.H{"list": slots})
}

// Overview 一周可授课与已排课概览
// GET /api/v1/availability/overview?date=&timezone=&owner_id=
func (h *AvailabilityHandler) Overview(c *gin.Context) {
	var req dto.AvailabilityOverviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	overview, err := h.availabilitySvc.Overview(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}
	response.OK(c, overview)
}

func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlot):
		response.ErrorWithDetails(c, 400, 22001, "可授课时段无效", err.Error())
	case errors.Is(err, service.ErrSlotOverlap):
		response.ErrorWithDetails(c, 400, 22002, "同一天的可授课时段不能重叠", err.Error())
	case handleCommonError(c, err):
	default:
		response.InternalError(c)
	}
}
