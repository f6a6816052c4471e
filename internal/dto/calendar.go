package dto

// ── 日历视图模块 DTO ──

// CalendarRequest 日历视图查询参数
type CalendarRequest struct {
	Date     string `form:"date"     binding:"required"`
	View     string `form:"view"     binding:"omitempty,oneof=day week"`
	Timezone string `form:"timezone" binding:"omitempty,max=64"`
	OwnerID  string `form:"owner_id" binding:"omitempty,max=128"`
}

// GridResponse 网格参数，前端按同一参数渲染
type GridResponse struct {
	StartHour   int     `json:"start_hour"`
	EndHour     int     `json:"end_hour"`
	HourHeight  float64 `json:"hour_height"`
	SnapMinutes int     `json:"snap_minutes"`
}

// PlacementResponse 课程块位置
type PlacementResponse struct {
	Occurrence   OccurrenceResponse `json:"occurrence"`
	StartLocal   string             `json:"start_local"` // HH:MM
	EndLocal     string             `json:"end_local"`
	TrackIndex   int                `json:"track_index"`
	TrackCount   int                `json:"track_count"`
	Top          float64            `json:"top"`
	Height       float64            `json:"height"`
	LeftPercent  float64            `json:"left_percent"`
	WidthPercent float64            `json:"width_percent"`
}

// DayLayoutResponse 单日布局
type DayLayoutResponse struct {
	Date       string              `json:"date"`
	Placements []PlacementResponse `json:"placements"`
}

// CalendarResponse 日历视图
type CalendarResponse struct {
	View     string              `json:"view"`
	Timezone string              `json:"timezone"`
	Grid     GridResponse        `json:"grid"`
	Days     []DayLayoutResponse `json:"days"`
}
