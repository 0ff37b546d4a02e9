package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// TeamRepository 小组数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByName(ctx context.Context, name string) (*model.Team, error)
	List(ctx context.Context, includeInactive bool) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// CountAssigned 统计已分配到该小组的申请数
	CountAssigned(ctx context.Context, teamID string) (int64, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("ResearchAreas", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, includeInactive bool) ([]model.Team, error) {
	var teams []model.Team
	db := r.db.WithContext(ctx).
		Preload("ResearchAreas", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") })
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("ResearchAreas").Save(team).Error
}

func (r *teamRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("team_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}

func (r *teamRepo) CountAssigned(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("assigned_team_id = ?", teamID).
		Count(&count).Error
	return count, err
}
