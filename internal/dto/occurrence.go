package dto

// ── 课程场次模块 DTO ──

// CreateOccurrenceRequest 创建单次课程请求
// 起止时间以 date + HH:MM 的墙上时间给出，按 timezone 换算为绝对时刻
type CreateOccurrenceRequest struct {
	OwnerID     string  `json:"owner_id"     binding:"omitempty,max=128"`
	CourseID    string  `json:"course_id"    binding:"required,max=128"`
	Title       string  `json:"title"        binding:"required,min=1,max=200"`
	MeetingLink *string `json:"meeting_link" binding:"omitempty,url,max=500"`
	Date        string  `json:"date"         binding:"required"` // "2024-05-06"
	StartTime   string  `json:"start_time"   binding:"required"` // "09:00"
	EndTime     string  `json:"end_time"     binding:"required"` // "10:00"
	Timezone    string  `json:"timezone"     binding:"omitempty,max=64"`
}

// CreateSeriesRequest 创建每周重复系列请求
type CreateSeriesRequest struct {
	CreateOccurrenceRequest
	EndDate string `json:"end_date" binding:"required"` // 包含当天
}

// UpdateOccurrenceRequest 编辑课程请求
// 课程属于系列时必须给出 scope: this | future
type UpdateOccurrenceRequest struct {
	Scope       string  `json:"scope"        binding:"omitempty,oneof=this future"`
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Timezone    string  `json:"timezone"     binding:"omitempty,max=64"`
	OwnerID     *string `json:"owner_id"     binding:"omitempty,max=128"`
	CourseID    *string `json:"course_id"    binding:"omitempty,max=128"`
	Title       *string `json:"title"        binding:"omitempty,min=1,max=200"`
	MeetingLink *string `json:"meeting_link" binding:"omitempty,max=500"` // 空字符串表示清除
	Status      *string `json:"status"       binding:"omitempty,oneof=scheduled cancelled completed"`
}

// DragRequest 拖拽释放
type DragRequest struct {
	TargetDate  string  `json:"target_date"  binding:"required"`
	PixelOffset float64 `json:"pixel_offset"`
	GrabOffset  float64 `json:"grab_offset"`
	Timezone    string  `json:"timezone"     binding:"omitempty,max=64"`
	Scope       string  `json:"scope"        binding:"omitempty,oneof=this future"`
}

// ResizeRequest 下边缘缩放
type ResizeRequest struct {
	PixelDelta float64 `json:"pixel_delta"`
	Timezone   string  `json:"timezone" binding:"omitempty,max=64"`
	Scope      string  `json:"scope"    binding:"omitempty,oneof=this future"`
}

// RescheduleRequest 调课申请
type RescheduleRequest struct {
	Date      string `json:"date"       binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	Timezone  string `json:"timezone"   binding:"omitempty,max=64"`
	Reason    string `json:"reason"     binding:"omitempty,max=500"`
}

// OccurrenceListRequest 按教师与时间范围查询
type OccurrenceListRequest struct {
	OwnerID  string `form:"owner_id" binding:"omitempty,max=128"`
	Start    string `form:"start"    binding:"required"` // YYYY-MM-DD，包含
	End      string `form:"end"      binding:"required"` // YYYY-MM-DD，包含
	Timezone string `form:"timezone" binding:"omitempty,max=64"`
}

// OccurrenceResponse 课程信息响应
type OccurrenceResponse struct {
	ID                string  `json:"id"`
	SeriesID          *string `json:"series_id,omitempty"`
	RecurrencePattern *string `json:"recurrence_pattern,omitempty"`
	OwnerID           string  `json:"owner_id"`
	CourseID          string  `json:"course_id"`
	Title             string  `json:"title"`
	MeetingLink       *string `json:"meeting_link,omitempty"`
	Start             string  `json:"start"` // RFC3339 UTC
	End               string  `json:"end"`
	Timezone          string  `json:"timezone,omitempty"`
	Status            string  `json:"status"`
	RescheduleStatus  *string `json:"reschedule_status,omitempty"`
	RequestedStart    *string `json:"requested_start,omitempty"`
	RequestedBy       *string `json:"requested_by,omitempty"`
	RescheduleReason  *string `json:"reschedule_reason,omitempty"`
}

// EditResultResponse 编辑结果
// 系列成员未选择编辑范围时只返回 Proposal，Updated 为空
type EditResultResponse struct {
	Scope    string               `json:"scope,omitempty"`
	Updated  []OccurrenceResponse `json:"updated"`
	Proposal *ProposalResponse    `json:"proposal,omitempty"`
}

// ProposalResponse 拖拽/缩放候选结果（系列成员需确认编辑范围）
type ProposalResponse struct {
	Occurrence OccurrenceResponse `json:"occurrence"`
	NeedsScope bool               `json:"needs_scope"`
}

// SeriesResponse 系列创建结果
type SeriesResponse struct {
	SeriesID    string               `json:"series_id"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}
