package handler

import (
	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/service"
	"tutoros/backend/pkg/response"
)

// CalendarHandler 日历视图 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// GetCalendar 日/周视图布局
// GET /api/v1/calendar?date=&view=day|week&timezone=&owner_id=
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	layout, err := h.calendarSvc.Layout(c.Request.Context(), actor, &req)
	if err != nil {
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OK(c, layout)
}
