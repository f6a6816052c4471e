package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Occurrence   OccurrenceRepository
	Availability AvailabilityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Occurrence:   NewOccurrenceRepo(db),
		Availability: NewAvailabilityRepo(db),
	}
}
