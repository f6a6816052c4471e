package dto

// ── 可授课时间模块 DTO ──

// AvailabilitySlotInput 单个每周时段
type AvailabilitySlotInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time"  binding:"required"` // "09:00"
	EndTime   string `json:"end_time"    binding:"required"`
	Status    string `json:"status"      binding:"omitempty,max=20"`
}

// ReplaceAvailabilityRequest 整体替换教师的可授课时间
type ReplaceAvailabilityRequest struct {
	OwnerID string                  `json:"owner_id" binding:"omitempty,max=128"`
	Slots   []AvailabilitySlotInput `json:"slots"    binding:"dive"`
}

// AvailabilityListRequest 查询参数
type AvailabilityListRequest struct {
	OwnerID string `form:"owner_id" binding:"omitempty,max=128"`
}

// AvailabilitySlotResponse 时段响应
type AvailabilitySlotResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

// AvailabilityOverviewRequest 周利用率查询参数
type AvailabilityOverviewRequest struct {
	OwnerID  string `form:"owner_id" binding:"omitempty,max=128"`
	Date     string `form:"date"     binding:"required"`
	Timezone string `form:"timezone" binding:"omitempty,max=64"`
}

// BookingResponse 已排课程在可授课视图中的表示
type BookingResponse struct {
	OccurrenceID       string `json:"occurrence_id"`
	Title              string `json:"title"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	WithinAvailability bool   `json:"within_availability"`
}

// OverviewDayResponse 单日概览
type OverviewDayResponse struct {
	Date      string                     `json:"date"`
	DayOfWeek int                        `json:"day_of_week"`
	Slots     []AvailabilitySlotResponse `json:"slots"`
	Bookings  []BookingResponse          `json:"bookings"`
}

// AvailabilityOverviewResponse 一周可授课与已排课概览
type AvailabilityOverviewResponse struct {
	Days               []OverviewDayResponse `json:"days"`
	AvailableMinutes   int                   `json:"available_minutes"`
	BookedMinutes      int                   `json:"booked_minutes"`
	UtilizationPercent int                   `json:"utilization_percent"`
}
