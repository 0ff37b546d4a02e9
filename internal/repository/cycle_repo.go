package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// CycleRepository 纳新周期数据访问接口
type CycleRepository interface {
	Create(ctx context.Context, cycle *model.RecruitmentCycle) error
	GetByID(ctx context.Context, id string) (*model.RecruitmentCycle, error)
	GetActive(ctx context.Context) (*model.RecruitmentCycle, error)
	List(ctx context.Context) ([]model.RecruitmentCycle, error)
	Update(ctx context.Context, cycle *model.RecruitmentCycle) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ClearActive(ctx context.Context) error
}

type cycleRepo struct {
	db *gorm.DB
}

// NewCycleRepo 创建 CycleRepository 实例
func NewCycleRepo(db *gorm.DB) CycleRepository {
	return &cycleRepo{db: db}
}

func (r *cycleRepo) Create(ctx context.Context, cycle *model.RecruitmentCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *cycleRepo) GetByID(ctx context.Context, id string) (*model.RecruitmentCycle, error) {
	var cycle model.RecruitmentCycle
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", id).
		First(&cycle).Error
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepo) GetActive(ctx context.Context) (*model.RecruitmentCycle, error) {
	var cycle model.RecruitmentCycle
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&cycle).Error
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepo) List(ctx context.Context) ([]model.RecruitmentCycle, error) {
	var cycles []model.RecruitmentCycle
	err := r.db.WithContext(ctx).
		Order("starts_on DESC").
		Find(&cycles).Error
	return cycles, err
}

func (r *cycleRepo) Update(ctx context.Context, cycle *model.RecruitmentCycle) error {
	return r.db.WithContext(ctx).Save(cycle).Error
}

func (r *cycleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.RecruitmentCycle{}).
		Where("cycle_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}

// ClearActive 将所有周期的 is_active 设为 false
func (r *cycleRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.RecruitmentCycle{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
