package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/service"
	"tutoros/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出周课表为 Excel
// GET /api/v1/export/week?date=&timezone=&owner_id=
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, filename, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	case handleCommonError(c, err):
	default:
		response.InternalError(c)
	}
}
