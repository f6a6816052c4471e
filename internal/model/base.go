package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(128)"                  json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(128)"                  json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"             json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:varchar(128)" json:"deleted_by,omitempty"`
}

// TenantScoped 多租户归属字段；所有查询都必须带 tenant_id 条件
type TenantScoped struct {
	TenantID string `gorm:"type:varchar(128);not null;index" json:"tenant_id"`
}
