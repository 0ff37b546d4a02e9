package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// RecruitmentConfigRepository 纳新配置数据访问接口（单行）
type RecruitmentConfigRepository interface {
	// Get 读取配置，不存在时按默认值创建
	Get(ctx context.Context) (*model.RecruitmentConfig, error)
	Update(ctx context.Context, cfg *model.RecruitmentConfig) error
}

type recruitmentConfigRepo struct {
	db *gorm.DB
}

// NewRecruitmentConfigRepo 创建 RecruitmentConfigRepository 实例
func NewRecruitmentConfigRepo(db *gorm.DB) RecruitmentConfigRepository {
	return &recruitmentConfigRepo{db: db}
}

func (r *recruitmentConfigRepo) Get(ctx context.Context) (*model.RecruitmentConfig, error) {
	cfg := model.RecruitmentConfig{
		Singleton:         true,
		ApplicationsOpen:  true,
		MinInterviewers:   2,
		InterviewLocation: "Zachry 420",
	}
	err := r.db.WithContext(ctx).
		Where("singleton = ?", true).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *recruitmentConfigRepo) Update(ctx context.Context, cfg *model.RecruitmentConfig) error {
	cfg.Singleton = true
	return r.db.WithContext(ctx).
		Model(&model.RecruitmentConfig{}).
		Where("singleton = ?", true).
		Updates(map[string]interface{}{
			"applications_open":  cfg.ApplicationsOpen,
			"min_interviewers":   cfg.MinInterviewers,
			"interview_location": cfg.InterviewLocation,
			"updated_by":         cfg.UpdatedBy,
		}).Error
}
