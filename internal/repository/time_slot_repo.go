package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// TimeSlotRepository 面试时间段数据访问接口
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	BatchCreate(ctx context.Context, slots []model.TimeSlot) error
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	// List cycleID 为空时返回全部；date 非零时按日期过滤
	List(ctx context.Context, cycleID string, date *time.Time) ([]model.TimeSlot, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type timeSlotRepo struct {
	db *gorm.DB
}

// NewTimeSlotRepo 创建 TimeSlotRepository 实例
func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Omit("Cycle").Create(slot).Error
}

func (r *timeSlotRepo) BatchCreate(ctx context.Context, slots []model.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Cycle").CreateInBatches(slots, 200).Error
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := r.db.WithContext(ctx).
		Where("time_slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) List(ctx context.Context, cycleID string, date *time.Time) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	db := r.db.WithContext(ctx)
	if cycleID != "" {
		db = db.Where("cycle_id = ?", cycleID)
	}
	if date != nil {
		db = db.Where("date = ?", *date)
	}
	err := db.Order("date ASC, start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) ListByIDs(ctx context.Context, ids []string) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if len(ids) == 0 {
		return slots, nil
	}
	err := r.db.WithContext(ctx).
		Where("time_slot_id IN ?", ids).
		Order("date ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) Update(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Omit("Cycle").Save(slot).Error
}

func (r *timeSlotRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("time_slot_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}
