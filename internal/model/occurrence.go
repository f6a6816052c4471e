package model

import "time"

// 课程状态
const (
	OccurrenceStatusScheduled = "scheduled"
	OccurrenceStatusCancelled = "cancelled"
	OccurrenceStatusCompleted = "completed"
)

// 调课申请状态
const (
	RescheduleStatusNone      = "none"
	RescheduleStatusRequested = "requested"
)

// RecurrencePatternWeekly 目前唯一支持的重复规则
const RecurrencePatternWeekly = "weekly"

// Occurrence 单次课程表 — 对应 occurrences
//
// SeriesID 为空表示独立课程或已脱离系列的课程。
// StartAt/EndAt 均为绝对时刻，Timezone 记录创建时的墙上时间所属时区。
type Occurrence struct {
	OccurrenceID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"occurrence_id"`
	SeriesID          *string `gorm:"type:uuid;index"                                 json:"series_id,omitempty"`
	RecurrencePattern *string `gorm:"type:varchar(20)"                                json:"recurrence_pattern,omitempty"`
	TenantScoped
	OwnerID          string     `gorm:"type:varchar(128);not null;index"                json:"owner_id"`
	CourseID         string     `gorm:"type:varchar(128);not null"                      json:"course_id"`
	Title            string     `gorm:"type:varchar(200);not null"                      json:"title"`
	MeetingLink      *string    `gorm:"type:varchar(500)"                               json:"meeting_link,omitempty"`
	StartAt          time.Time  `gorm:"type:timestamptz;not null;index"                 json:"start_at"`
	EndAt            time.Time  `gorm:"type:timestamptz;not null"                       json:"end_at"`
	Timezone         string     `gorm:"type:varchar(64);not null;default:''"            json:"timezone"`
	Status           string     `gorm:"type:varchar(20);not null;default:'scheduled'"   json:"status"`
	RescheduleStatus *string    `gorm:"type:varchar(20)"                                json:"reschedule_status,omitempty"`
	RequestedStartAt *time.Time `gorm:"type:timestamptz"                                json:"requested_start_at,omitempty"`
	RequestedBy      *string    `gorm:"type:varchar(128)"                               json:"requested_by,omitempty"`
	RescheduleReason *string    `gorm:"type:varchar(500)"                               json:"reschedule_reason,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Occurrence) TableName() string { return "occurrences" }

// Duration 课程时长
func (o *Occurrence) Duration() time.Duration { return o.EndAt.Sub(o.StartAt) }

// InSeries 是否仍属于某个重复系列
func (o *Occurrence) InSeries() bool { return o.SeriesID != nil && *o.SeriesID != "" }

// HasPendingReschedule 是否存在待处理的调课申请
func (o *Occurrence) HasPendingReschedule() bool {
	return o.RescheduleStatus != nil && *o.RescheduleStatus == RescheduleStatusRequested
}

// OccurrencePatch 局部更新字段；nil 表示不修改
//
// DetachSeries 为 true 时同时清空 series_id 与 recurrence_pattern。
// ClearReschedule 为 true 时清空调课申请相关字段并将状态置为 none。
type OccurrencePatch struct {
	StartAt          *time.Time
	EndAt            *time.Time
	Title            *string
	CourseID         *string
	OwnerID          *string
	MeetingLink      *string // 空字符串表示清除
	Status           *string
	RescheduleStatus *string
	RequestedStartAt *time.Time
	RequestedBy      *string
	RescheduleReason *string
	DetachSeries     bool
	ClearReschedule  bool
	UpdatedBy        *string
}

// HasTimeChange 补丁是否涉及起止时间
func (p *OccurrencePatch) HasTimeChange() bool { return p.StartAt != nil || p.EndAt != nil }

// WithoutTimes 返回去掉起止时间的副本（用于向系列成员统一下发非时间字段）
func (p OccurrencePatch) WithoutTimes() OccurrencePatch {
	p.StartAt = nil
	p.EndAt = nil
	return p
}

// Apply 将补丁应用到内存中的课程（乐观更新与测试使用）
func (p *OccurrencePatch) Apply(o *Occurrence) {
	if p.StartAt != nil {
		o.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		o.EndAt = *p.EndAt
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.CourseID != nil {
		o.CourseID = *p.CourseID
	}
	if p.OwnerID != nil {
		o.OwnerID = *p.OwnerID
	}
	if p.MeetingLink != nil {
		if *p.MeetingLink == "" {
			o.MeetingLink = nil
		} else {
			link := *p.MeetingLink
			o.MeetingLink = &link
		}
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.RescheduleStatus != nil {
		rs := *p.RescheduleStatus
		o.RescheduleStatus = &rs
	}
	if p.RequestedStartAt != nil {
		o.RequestedStartAt = p.RequestedStartAt
	}
	if p.RequestedBy != nil {
		o.RequestedBy = p.RequestedBy
	}
	if p.RescheduleReason != nil {
		o.RescheduleReason = p.RescheduleReason
	}
	if p.DetachSeries {
		o.SeriesID = nil
		o.RecurrencePattern = nil
	}
	if p.ClearReschedule {
		none := RescheduleStatusNone
		o.RescheduleStatus = &none
		o.RequestedStartAt = nil
		o.RequestedBy = nil
		o.RescheduleReason = nil
	}
	if p.UpdatedBy != nil {
		o.UpdatedBy = p.UpdatedBy
	}
}

// Columns 转换为 GORM Updates 使用的列映射
func (p *OccurrencePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.StartAt != nil {
		cols["start_at"] = *p.StartAt
	}
	if p.EndAt != nil {
		cols["end_at"] = *p.EndAt
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.CourseID != nil {
		cols["course_id"] = *p.CourseID
	}
	if p.OwnerID != nil {
		cols["owner_id"] = *p.OwnerID
	}
	if p.MeetingLink != nil {
		if *p.MeetingLink == "" {
			cols["meeting_link"] = nil
		} else {
			cols["meeting_link"] = *p.MeetingLink
		}
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.RescheduleStatus != nil {
		cols["reschedule_status"] = *p.RescheduleStatus
	}
	if p.RequestedStartAt != nil {
		cols["requested_start_at"] = *p.RequestedStartAt
	}
	if p.RequestedBy != nil {
		cols["requested_by"] = *p.RequestedBy
	}
	if p.RescheduleReason != nil {
		cols["reschedule_reason"] = *p.RescheduleReason
	}
	if p.DetachSeries {
		cols["series_id"] = nil
		cols["recurrence_pattern"] = nil
	}
	if p.ClearReschedule {
		cols["reschedule_status"] = RescheduleStatusNone
		cols["requested_start_at"] = nil
		cols["requested_by"] = nil
		cols["reschedule_reason"] = nil
	}
	if p.UpdatedBy != nil {
		cols["updated_by"] = *p.UpdatedBy
	}
	return cols
}

// OccurrenceUpdate 批量更新中的一项
type OccurrenceUpdate struct {
	OccurrenceID string
	Patch        OccurrencePatch
}
