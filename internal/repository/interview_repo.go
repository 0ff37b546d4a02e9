package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tamu-thinktank/website-sub002/internal/model"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

// InterviewFilter 面试列表过滤条件
type InterviewFilter struct {
	CycleID       string
	OfficerID     string
	ApplicationID string
	TimeSlotID    string
	Status        string
}

// InterviewRepository 面试数据访问接口
type InterviewRepository interface {
	Create(ctx context.Context, interview *model.Interview) error
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	List(ctx context.Context, filter InterviewFilter) ([]model.Interview, error)
	// ListActiveByCycle 周期内未取消的面试（用于计算干事占用）
	ListActiveByCycle(ctx context.Context, cycleID string) ([]model.Interview, error)
	// HasActive 干事在该时间段是否已有未取消的面试
	HasActive(ctx context.Context, officerID, slotID string) (bool, error)
	// UpdateStatus 乐观锁更新状态
	UpdateStatus(ctx context.Context, interview *model.Interview) error
}

type interviewRepo struct {
	db *gorm.DB
}

// NewInterviewRepo 创建 InterviewRepository 实例
func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, interview *model.Interview) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(interview).Error
}

func (r *interviewRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Application").
		Preload("Officer").
		Preload("TimeSlot")
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	var interview model.Interview
	err := r.preloaded(ctx).
		Where("interview_id = ?", id).
		First(&interview).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *interviewRepo) List(ctx context.Context, filter InterviewFilter) ([]model.Interview, error) {
	var interviews []model.Interview
	db := r.preloaded(ctx)
	if filter.CycleID != "" {
		db = db.Where("interviews.cycle_id = ?", filter.CycleID)
	}
	if filter.OfficerID != "" {
		db = db.Where("interviews.officer_id = ?", filter.OfficerID)
	}
	if filter.ApplicationID != "" {
		db = db.Where("interviews.application_id = ?", filter.ApplicationID)
	}
	if filter.TimeSlotID != "" {
		db = db.Where("interviews.time_slot_id = ?", filter.TimeSlotID)
	}
	if filter.Status != "" {
		db = db.Where("interviews.status = ?", filter.Status)
	}
	err := db.Order("interviews.created_at ASC").Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepo) ListActiveByCycle(ctx context.Context, cycleID string) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.WithContext(ctx).
		Where("cycle_id = ? AND status <> ?", cycleID, model.InterviewCancelled).
		Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepo) HasActive(ctx context.Context, officerID, slotID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Interview{}).
		Where("officer_id = ? AND time_slot_id = ? AND status <> ?", officerID, slotID, model.InterviewCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *interviewRepo) UpdateStatus(ctx context.Context, interview *model.Interview) error {
	oldVersion := interview.Version
	result := r.db.WithContext(ctx).
		Model(&model.Interview{}).
		Where("interview_id = ? AND version = ?", interview.InterviewID, oldVersion).
		Updates(map[string]interface{}{
			"status":     interview.Status,
			"updated_by": interview.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	interview.Version = oldVersion + 1
	return nil
}
