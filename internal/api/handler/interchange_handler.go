package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/service"
	"tutoros/backend/pkg/response"
)

// InterchangeHandler ICS 导入导出 HTTP 处理器
type InterchangeHandler struct {
	interchangeSvc service.InterchangeService
}

// NewInterchangeHandler 创建 InterchangeHandler
func NewInterchangeHandler(interchangeSvc service.InterchangeService) *InterchangeHandler {
	return &InterchangeHandler{interchangeSvc: interchangeSvc}
}

// ImportICS 导入 ICS：multipart 上传 file 字段，或表单中提供 url
// POST /api/v1/ics/import
func (h *InterchangeHandler) ImportICS(c *gin.Context) {
	var req dto.ICSImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var (
		result *dto.ICSImportResponse
		err    error
	)
	fileHeader, fileErr := c.FormFile("file")
	switch {
	case fileErr == nil:
		f, openErr := fileHeader.Open()
		if openErr != nil {
			response.BadRequest(c, 23004, "无法读取上传文件")
			return
		}
		defer f.Close()
		result, err = h.interchangeSvc.Import(c.Request.Context(), actor, &req, f)
	case req.URL != "":
		result, err = h.interchangeSvc.ImportURL(c.Request.Context(), actor, &req)
	default:
		response.BadRequest(c, 23005, "请上传 ICS 文件或提供订阅链接")
		return
	}
	if err != nil {
		h.handleInterchangeError(c, err)
		return
	}
	response.Created(c, result)
}

// FeedICS 以 ICS 格式导出课程
// GET /api/v1/ics/feed?start=&end=&owner_id=&timezone=
func (h *InterchangeHandler) FeedICS(c *gin.Context) {
	var req dto.ICSFeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	body, err := h.interchangeSvc.Feed(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleInterchangeError(c, err)
		return
	}
	response.File(c, "calendar.ics", "text/calendar; charset=utf-8", body)
}

func (h *InterchangeHandler) handleInterchangeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 23001, "ICS 中没有可导入的课程")
	case errors.Is(err, service.ErrICSInvalid):
		response.BadRequest(c, 23002, "ICS 格式解析失败")
	case errors.Is(err, service.ErrICSFetch):
		response.Error(c, http.StatusBadGateway, 23003, "获取订阅链接失败")
	case handleCommonError(c, err):
	default:
		response.InternalError(c)
	}
}
