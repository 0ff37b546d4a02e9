package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// InterviewNoteRepository 面试记录数据访问接口
type InterviewNoteRepository interface {
	Create(ctx context.Context, note *model.InterviewNote) error
	ListByInterview(ctx context.Context, interviewID string) ([]model.InterviewNote, error)
}

type interviewNoteRepo struct {
	db *gorm.DB
}

// NewInterviewNoteRepo 创建 InterviewNoteRepository 实例
func NewInterviewNoteRepo(db *gorm.DB) InterviewNoteRepository {
	return &interviewNoteRepo{db: db}
}

func (r *interviewNoteRepo) Create(ctx context.Context, note *model.InterviewNote) error {
	return r.db.WithContext(ctx).Omit("Officer").Create(note).Error
}

func (r *interviewNoteRepo) ListByInterview(ctx context.Context, interviewID string) ([]model.InterviewNote, error) {
	var notes []model.InterviewNote
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Where("interview_id = ?", interviewID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}
