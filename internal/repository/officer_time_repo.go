package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// OfficerTimeRepository 干事可用时间数据访问接口
type OfficerTimeRepository interface {
	ListByOfficer(ctx context.Context, officerID, cycleID string) ([]model.OfficerTime, error)
	// ListByCycle 只返回在职且未删除干事的勾选
	ListByCycle(ctx context.Context, cycleID string) ([]model.OfficerTime, error)
	// CycleIDsByOfficer 干事勾选过时间段的周期
	CycleIDsByOfficer(ctx context.Context, officerID string) ([]string, error)
	ListBySlot(ctx context.Context, slotID string) ([]model.OfficerTime, error)
	Exists(ctx context.Context, officerID, slotID string) (bool, error)
	// Replace 整体替换干事在某周期的可用时间
	Replace(ctx context.Context, officerID, cycleID string, slotIDs []string) error
}

type officerTimeRepo struct {
	db *gorm.DB
}

// NewOfficerTimeRepo 创建 OfficerTimeRepository 实例
func NewOfficerTimeRepo(db *gorm.DB) OfficerTimeRepository {
	return &officerTimeRepo{db: db}
}

func (r *officerTimeRepo) ListByOfficer(ctx context.Context, officerID, cycleID string) ([]model.OfficerTime, error) {
	var times []model.OfficerTime
	err := r.db.WithContext(ctx).
		Where("officer_id = ? AND cycle_id = ?", officerID, cycleID).
		Find(&times).Error
	return times, err
}

func (r *officerTimeRepo) ListByCycle(ctx context.Context, cycleID string) ([]model.OfficerTime, error) {
	var times []model.OfficerTime
	err := r.db.WithContext(ctx).
		Select("officer_times.*").
		Joins("JOIN officers ON officers.officer_id = officer_times.officer_id AND officers.deleted_at IS NULL AND officers.is_active = ?", true).
		Where("officer_times.cycle_id = ?", cycleID).
		Find(&times).Error
	return times, err
}

func (r *officerTimeRepo) CycleIDsByOfficer(ctx context.Context, officerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.OfficerTime{}).
		Where("officer_id = ?", officerID).
		Distinct().
		Pluck("cycle_id", &ids).Error
	return ids, err
}

func (r *officerTimeRepo) ListBySlot(ctx context.Context, slotID string) ([]model.OfficerTime, error) {
	var times []model.OfficerTime
	err := r.db.WithContext(ctx).
		Where("time_slot_id = ?", slotID).
		Find(&times).Error
	return times, err
}

func (r *officerTimeRepo) Exists(ctx context.Context, officerID, slotID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OfficerTime{}).
		Where("officer_id = ? AND time_slot_id = ?", officerID, slotID).
		Count(&count).Error
	return count > 0, err
}

func (r *officerTimeRepo) Replace(ctx context.Context, officerID, cycleID string, slotIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("officer_id = ? AND cycle_id = ?", officerID, cycleID).
			Delete(&model.OfficerTime{}).Error; err != nil {
			return err
		}
		if len(slotIDs) == 0 {
			return nil
		}
		rows := make([]model.OfficerTime, 0, len(slotIDs))
		for _, id := range slotIDs {
			rows = append(rows, model.OfficerTime{
				OfficerID:  officerID,
				TimeSlotID: id,
				CycleID:    cycleID,
			})
		}
		return tx.Omit("Officer", "TimeSlot").Create(&rows).Error
	})
}
