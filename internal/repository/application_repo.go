package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tamu-thinktank/website-sub002/internal/model"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

// ApplicationFilter 申请列表过滤条件
type ApplicationFilter struct {
	CycleID string
	Status  string
	TeamID  string // 匹配意向小组或已分配小组
	Keyword string // 姓名 / 邮箱 / 学号
}

// ApplicationRepository 申请数据访问接口
type ApplicationRepository interface {
	// Create 创建申请并写入研究方向关联
	Create(ctx context.Context, app *model.Application, researchAreaIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	// GetDetail 含小组、研究方向、评审
	GetDetail(ctx context.Context, id string) (*model.Application, error)
	GetByCycleAndEmail(ctx context.Context, cycleID, email string) (*model.Application, error)
	List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error)
	ListByCycle(ctx context.Context, cycleID string) ([]model.Application, error)
	// Update 乐观锁更新可变字段，version 不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, app *model.Application) error
	// UpdateScore 回写评审均分与评审数
	UpdateScore(ctx context.Context, id string, avg *float64, count int) error
	// TransferStatus 批量将 from 状态的申请转为 to 状态，返回影响行数
	TransferStatus(ctx context.Context, cycleID, from, to string, ids []string, updatedBy string) (int64, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application, researchAreaIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(app).Error; err != nil {
			return err
		}
		if len(researchAreaIDs) == 0 {
			return nil
		}
		links := make([]model.ApplicationResearchArea, 0, len(researchAreaIDs))
		for _, id := range researchAreaIDs {
			links = append(links, model.ApplicationResearchArea{
				ApplicationID:  app.ApplicationID,
				ResearchAreaID: id,
			})
		}
		return tx.Create(&links).Error
	})
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Cycle").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) GetDetail(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("PreferredTeam").
		Preload("AssignedTeam").
		Preload("ResearchAreas").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reviews.Officer").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) GetByCycleAndEmail(ctx context.Context, cycleID, email string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Cycle").
		Where("cycle_id = ? AND LOWER(email) = ?", cycleID, strings.ToLower(email)).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{})
	if filter.CycleID != "" {
		db = db.Where("cycle_id = ?", filter.CycleID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TeamID != "" {
		db = db.Where("preferred_team_id = ? OR assigned_team_id = ?", filter.TeamID, filter.TeamID)
	}
	if filter.Keyword != "" {
		kw := "%" + strings.ToLower(filter.Keyword) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR uin LIKE ?", kw, kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("PreferredTeam").Preload("AssignedTeam").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepo) ListByCycle(ctx context.Context, cycleID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("PreferredTeam").
		Preload("AssignedTeam").
		Preload("ResearchAreas").
		Where("cycle_id = ?", cycleID).
		Order("name ASC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepo) Update(ctx context.Context, app *model.Application) error {
	oldVersion := app.Version
	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ? AND version = ?", app.ApplicationID, oldVersion).
		Updates(map[string]interface{}{
			"status":           app.Status,
			"assigned_team_id": app.AssignedTeamID,
			"resume_file_id":   app.ResumeFileID,
			"resume_url":       app.ResumeURL,
			"resume_uploaded":  app.ResumeUploaded,
			"updated_by":       app.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version = oldVersion + 1
	return nil
}

func (r *applicationRepo) UpdateScore(ctx context.Context, id string, avg *float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ?", id).
		Updates(map[string]interface{}{
			"score_avg":    avg,
			"review_count": count,
		}).Error
}

func (r *applicationRepo) TransferStatus(ctx context.Context, cycleID, from, to string, ids []string, updatedBy string) (int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("cycle_id = ? AND status = ?", cycleID, from)
	if len(ids) > 0 {
		db = db.Where("application_id IN ?", ids)
	}
	result := db.Updates(map[string]interface{}{
		"status":     to,
		"updated_by": updatedBy,
		"version":    gorm.Expr("version + 1"),
	})
	return result.RowsAffected, result.Error
}

func (r *applicationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}
