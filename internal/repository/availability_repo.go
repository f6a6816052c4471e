package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoros/backend/internal/model"
	pkgerrors "tutoros/backend/pkg/errors"
)

// AvailabilityRepository 可授课时间数据访问接口
type AvailabilityRepository interface {
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]model.AvailabilitySlot, error)
	ReplaceByOwner(ctx context.Context, tenantID, ownerID string, slots []model.AvailabilitySlot) error
}

type availabilityRepo struct {
	db *gorm.DB
}

// NewAvailabilityRepo 创建 AvailabilityRepository 实例
func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]model.AvailabilitySlot, error) {
	var slots []model.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
		Order("day_of_week ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

// ReplaceByOwner 事务内整体替换某位教师的可授课时间
func (r *availabilityRepo) ReplaceByOwner(ctx context.Context, tenantID, ownerID string, slots []model.AvailabilitySlot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 替换场景直接硬删除
		if err := tx.Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
			Delete(&model.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for i := range slots {
			if slots[i].AvailabilitySlotID == "" {
				slots[i].AvailabilitySlotID = uuid.NewString()
			}
			slots[i].TenantID = tenantID
			slots[i].OwnerID = ownerID
		}
		return tx.Create(&slots).Error
	})
	return pkgerrors.TranslateDB(err)
}
