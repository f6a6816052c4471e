package model

// AvailabilityStatusAvailable 可授课
const AvailabilityStatusAvailable = "available"

// AvailabilitySlot 教师每周可授课时间段 — 对应 availability_slots
//
// StartTime/EndTime 为不带时区的 "HH:MM"，按查看者的显示时区解释。
type AvailabilitySlot struct {
	AvailabilitySlotID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"availability_slot_id"`
	TenantScoped
	OwnerID   string `gorm:"type:varchar(128);not null;index"              json:"owner_id"`
	DayOfWeek int    `gorm:"type:smallint;not null"                        json:"day_of_week"` // 0=周日 … 6=周六
	StartTime string `gorm:"type:varchar(5);not null"                      json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);not null"                      json:"end_time"`
	Status    string `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	BaseModel
}

// TableName 指定表名
func (AvailabilitySlot) TableName() string { return "availability_slots" }
