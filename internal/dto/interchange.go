package dto

// ── 日历导入导出模块 DTO ──

// ICSImportRequest 导入参数（multipart 表单，文件字段为 file；或提供 url）
type ICSImportRequest struct {
	OwnerID  string `form:"owner_id"  binding:"omitempty,max=128"`
	CourseID string `form:"course_id" binding:"required,max=128"`
	Timezone string `form:"timezone"  binding:"omitempty,max=64"`
	URL      string `form:"url"       binding:"omitempty,url"`
}

// ICSImportResponse 导入结果
type ICSImportResponse struct {
	Imported    int                  `json:"imported"`
	Skipped     int                  `json:"skipped"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// ICSFeedRequest 导出 ICS 的查询参数
type ICSFeedRequest struct {
	OwnerID  string `form:"owner_id" binding:"omitempty,max=128"`
	Start    string `form:"start"    binding:"required"`
	End      string `form:"end"      binding:"required"`
	Timezone string `form:"timezone" binding:"omitempty,max=64"`
}
