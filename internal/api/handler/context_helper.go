package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutoros/backend/internal/schedule"
	"tutoros/backend/internal/service"
	pkgerrors "tutoros/backend/pkg/errors"
	"tutoros/backend/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取当前操作者。
// JWT 中间件未注入 user_id / tenant_id 时返回 false 并写入 401 响应，
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString("user_id")
	tenantID := c.GetString("tenant_id")
	if userID == "" || tenantID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, TenantID: tenantID, Role: c.GetString("role")}, true
}

// handleCommonError 处理各模块共用的输入类错误，已处理返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, schedule.ErrInvalidDate):
		response.BadRequest(c, 10011, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 10012, "时间格式无效，应为 HH:MM")
	case errors.Is(err, schedule.ErrInvalidTimezone):
		response.BadRequest(c, 10013, "时区无效")
	case errors.Is(err, schedule.ErrInvalidViewMode):
		response.BadRequest(c, 10014, "视图类型无效")
	case errors.Is(err, schedule.ErrInvalidTimeRange):
		response.BadRequest(c, 10015, "结束时间必须晚于开始时间")
	case errors.Is(err, pkgerrors.ErrCheckViolation):
		response.BadRequest(c, 10016, "数据不满足约束")
	case errors.Is(err, pkgerrors.ErrStaleRecord):
		response.Error(c, http.StatusConflict, 10017, "记录已被修改或删除，请刷新后重试")
	default:
		return false
	}
	return true
}
