package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// ResearchAreaRepository 研究方向数据访问接口
type ResearchAreaRepository interface {
	Create(ctx context.Context, area *model.ResearchArea) error
	GetByID(ctx context.Context, id string) (*model.ResearchArea, error)
	GetByTeamAndName(ctx context.Context, teamID, name string) (*model.ResearchArea, error)
	List(ctx context.Context, teamID string) ([]model.ResearchArea, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.ResearchArea, error)
	Update(ctx context.Context, area *model.ResearchArea) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type researchAreaRepo struct {
	db *gorm.DB
}

// NewResearchAreaRepo 创建 ResearchAreaRepository 实例
func NewResearchAreaRepo(db *gorm.DB) ResearchAreaRepository {
	return &researchAreaRepo{db: db}
}

func (r *researchAreaRepo) Create(ctx context.Context, area *model.ResearchArea) error {
	return r.db.WithContext(ctx).Create(area).Error
}

func (r *researchAreaRepo) GetByID(ctx context.Context, id string) (*model.ResearchArea, error) {
	var area model.ResearchArea
	err := r.db.WithContext(ctx).
		Where("research_area_id = ?", id).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *researchAreaRepo) GetByTeamAndName(ctx context.Context, teamID, name string) (*model.ResearchArea, error) {
	var area model.ResearchArea
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND name = ?", teamID, name).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *researchAreaRepo) List(ctx context.Context, teamID string) ([]model.ResearchArea, error) {
	var areas []model.ResearchArea
	db := r.db.WithContext(ctx)
	if teamID != "" {
		db = db.Where("team_id = ?", teamID)
	}
	err := db.Order("name ASC").Find(&areas).Error
	return areas, err
}

func (r *researchAreaRepo) ListByIDs(ctx context.Context, ids []string) ([]model.ResearchArea, error) {
	var areas []model.ResearchArea
	if len(ids) == 0 {
		return areas, nil
	}
	err := r.db.WithContext(ctx).
		Where("research_area_id IN ?", ids).
		Find(&areas).Error
	return areas, err
}

func (r *researchAreaRepo) Update(ctx context.Context, area *model.ResearchArea) error {
	return r.db.WithContext(ctx).Omit("Team").Save(area).Error
}

func (r *researchAreaRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ResearchArea{}).
		Where("research_area_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}
