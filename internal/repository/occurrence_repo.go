package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutoros/backend/internal/model"
	pkgerrors "tutoros/backend/pkg/errors"
)

// OccurrenceRepository 课程场次数据访问接口
// 所有方法都按 tenantID 隔离
type OccurrenceRepository interface {
	Create(ctx context.Context, occ *model.Occurrence) error
	BatchCreate(ctx context.Context, occs []model.Occurrence) error
	GetByID(ctx context.Context, tenantID, id string) (*model.Occurrence, error)
	Update(ctx context.Context, tenantID, id string, patch model.OccurrencePatch) error
	BatchUpdate(ctx context.Context, tenantID string, updates []model.OccurrenceUpdate) error
	Delete(ctx context.Context, tenantID, id, deletedBy string) error
	QueryBySeriesAndStartAfter(ctx context.Context, tenantID, seriesID string, from time.Time) ([]model.Occurrence, error)
	QueryByOwnerAndDateRange(ctx context.Context, tenantID, ownerID string, start, end time.Time) ([]model.Occurrence, error)

	// CompleteEndedBefore 跨租户把已结束的 scheduled 课程标记为 completed，
	// 有待处理调课申请的课程保持不变
	CompleteEndedBefore(ctx context.Context, before time.Time) (int64, error)
}

type occurrenceRepo struct {
	db *gorm.DB
}

// NewOccurrenceRepo 创建 OccurrenceRepository 实例
func NewOccurrenceRepo(db *gorm.DB) OccurrenceRepository {
	return &occurrenceRepo{db: db}
}

func (r *occurrenceRepo) Create(ctx context.Context, occ *model.Occurrence) error {
	if occ.OccurrenceID == "" {
		occ.OccurrenceID = uuid.NewString()
	}
	return pkgerrors.TranslateDB(r.db.WithContext(ctx).Create(occ).Error)
}

// BatchCreate 在同一事务中批量插入，系列展开的结果要么全部写入要么全部失败
func (r *occurrenceRepo) BatchCreate(ctx context.Context, occs []model.Occurrence) error {
	if len(occs) == 0 {
		return nil
	}
	for i := range occs {
		if occs[i].OccurrenceID == "" {
			occs[i].OccurrenceID = uuid.NewString()
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&occs, 100).Error
	})
	return pkgerrors.TranslateDB(err)
}

func (r *occurrenceRepo) GetByID(ctx context.Context, tenantID, id string) (*model.Occurrence, error) {
	var occ model.Occurrence
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND occurrence_id = ?", tenantID, id).
		First(&occ).Error
	if err != nil {
		return nil, err
	}
	return &occ, nil
}

// Update 局部更新；未命中记录返回 ErrStaleRecord
func (r *occurrenceRepo) Update(ctx context.Context, tenantID, id string, patch model.OccurrencePatch) error {
	return pkgerrors.TranslateDB(applyPatch(r.db.WithContext(ctx), tenantID, id, patch))
}

// BatchUpdate 在单个事务中应用全部更新，任一失败则整体回滚
func (r *occurrenceRepo) BatchUpdate(ctx context.Context, tenantID string, updates []model.OccurrenceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := applyPatch(tx, tenantID, u.OccurrenceID, u.Patch); err != nil {
				return err
			}
		}
		return nil
	})
	return pkgerrors.TranslateDB(err)
}

func applyPatch(db *gorm.DB, tenantID, id string, patch model.OccurrencePatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now().UTC()
	result := db.Model(&model.Occurrence{}).
		Where("tenant_id = ? AND occurrence_id = ?", tenantID, id).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleRecord
	}
	return nil
}

// Delete 软删除单条记录，不级联到同系列的其他课程
func (r *occurrenceRepo) Delete(ctx context.Context, tenantID, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Occurrence{}).
		Where("tenant_id = ? AND occurrence_id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleRecord
	}
	return nil
}

func (r *occurrenceRepo) QueryBySeriesAndStartAfter(ctx context.Context, tenantID, seriesID string, from time.Time) ([]model.Occurrence, error) {
	var occs []model.Occurrence
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND series_id = ? AND start_at >= ?", tenantID, seriesID, from).
		Order("start_at ASC").
		Find(&occs).Error
	return occs, err
}

// QueryByOwnerAndDateRange 查询与 [start, end) 相交的课程
func (r *occurrenceRepo) QueryByOwnerAndDateRange(ctx context.Context, tenantID, ownerID string, start, end time.Time) ([]model.Occurrence, error) {
	var occs []model.Occurrence
	db := r.db.WithContext(ctx).
		Where("tenant_id = ? AND start_at < ? AND end_at > ?", tenantID, end, start)
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}
	err := db.Order("start_at ASC, occurrence_id ASC").Find(&occs).Error
	return occs, err
}

func (r *occurrenceRepo) CompleteEndedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Occurrence{}).
		Where("status = ? AND end_at <= ?", model.OccurrenceStatusScheduled, before).
		Where("reschedule_status IS NULL OR reschedule_status <> ?", model.RescheduleStatusRequested).
		Updates(map[string]interface{}{
			"status":     model.OccurrenceStatusCompleted,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, pkgerrors.TranslateDB(result.Error)
}
