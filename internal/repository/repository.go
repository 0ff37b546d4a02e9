package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Cycle        CycleRepository
	Team         TeamRepository
	ResearchArea ResearchAreaRepository
	Officer      OfficerRepository
	Application  ApplicationRepository
	Review       ReviewRepository
	TimeSlot     TimeSlotRepository
	OfficerTime  OfficerTimeRepository
	Interview    InterviewRepository
	Note         InterviewNoteRepository
	Config       RecruitmentConfigRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Cycle:        NewCycleRepo(db),
		Team:         NewTeamRepo(db),
		ResearchArea: NewResearchAreaRepo(db),
		Officer:      NewOfficerRepo(db),
		Application:  NewApplicationRepo(db),
		Review:       NewReviewRepo(db),
		TimeSlot:     NewTimeSlotRepo(db),
		OfficerTime:  NewOfficerTimeRepo(db),
		Interview:    NewInterviewRepo(db),
		Note:         NewInterviewNoteRepo(db),
		Config:       NewRecruitmentConfigRepo(db),
	}
}

// BeginTx 开启事务；未注入数据库连接（单元测试中的 Mock 聚合）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误或 panic 时回滚
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// softDelete 软删除通用字段
func softDelete(deletedBy string) map[string]interface{} {
	return map[string]interface{}{
		"deleted_by": deletedBy,
		"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}
}
