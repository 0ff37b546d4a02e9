package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// ReviewRepository 申请评审数据访问接口
type ReviewRepository interface {
	// Upsert 每位干事对每份申请仅一条评审，已存在时覆盖分数与评语
	Upsert(ctx context.Context, review *model.ApplicationReview) error
	GetByApplicationAndOfficer(ctx context.Context, applicationID, officerID string) (*model.ApplicationReview, error)
	ListByApplication(ctx context.Context, applicationID string) ([]model.ApplicationReview, error)
	// Aggregate 返回申请的评审均分与评审数
	Aggregate(ctx context.Context, applicationID string) (avg float64, count int64, err error)
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Upsert(ctx context.Context, review *model.ApplicationReview) error {
	return r.db.WithContext(ctx).
		Omit("Officer").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "application_id"}, {Name: "officer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at", "updated_by"}),
		}).
		Create(review).Error
}

func (r *reviewRepo) GetByApplicationAndOfficer(ctx context.Context, applicationID, officerID string) (*model.ApplicationReview, error) {
	var review model.ApplicationReview
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Where("application_id = ? AND officer_id = ?", applicationID, officerID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListByApplication(ctx context.Context, applicationID string) ([]model.ApplicationReview, error) {
	var reviews []model.ApplicationReview
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) Aggregate(ctx context.Context, applicationID string) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ApplicationReview{}).
		Select("AVG(score) AS avg, COUNT(*) AS count").
		Where("application_id = ?", applicationID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, row.Count, nil
	}
	return *row.Avg, row.Count, nil
}
