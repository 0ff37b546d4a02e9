package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// OfficerFilter 干事列表过滤条件
type OfficerFilter struct {
	Role            string
	TeamID          string
	Keyword         string
	IncludeInactive bool
}

// OfficerRepository 干事数据访问接口
type OfficerRepository interface {
	Create(ctx context.Context, officer *model.Officer) error
	GetByID(ctx context.Context, id string) (*model.Officer, error)
	GetByEmail(ctx context.Context, email string) (*model.Officer, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*model.Officer, error)
	List(ctx context.Context, filter OfficerFilter, offset, limit int) ([]model.Officer, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Officer, error)
	Update(ctx context.Context, officer *model.Officer) error
	// BindFirebaseUID 首次登录时绑定 Firebase UID（仅在尚未绑定时生效）
	BindFirebaseUID(ctx context.Context, officerID, uid string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type officerRepo struct {
	db *gorm.DB
}

// NewOfficerRepo 创建 OfficerRepository 实例
func NewOfficerRepo(db *gorm.DB) OfficerRepository {
	return &officerRepo{db: db}
}

func (r *officerRepo) Create(ctx context.Context, officer *model.Officer) error {
	return r.db.WithContext(ctx).Create(officer).Error
}

func (r *officerRepo) GetByID(ctx context.Context, id string) (*model.Officer, error) {
	var officer model.Officer
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("officer_id = ?", id).
		First(&officer).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *officerRepo) GetByEmail(ctx context.Context, email string) (*model.Officer, error) {
	var officer model.Officer
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&officer).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *officerRepo) GetByFirebaseUID(ctx context.Context, uid string) (*model.Officer, error) {
	var officer model.Officer
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("firebase_uid = ?", uid).
		First(&officer).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *officerRepo) List(ctx context.Context, filter OfficerFilter, offset, limit int) ([]model.Officer, int64, error) {
	var officers []model.Officer
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Officer{})
	if !filter.IncludeInactive {
		db = db.Where("is_active = ?", true)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.TeamID != "" {
		db = db.Where("team_id = ?", filter.TeamID)
	}
	if filter.Keyword != "" {
		kw := "%" + strings.ToLower(filter.Keyword) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Team").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&officers).Error; err != nil {
		return nil, 0, err
	}

	return officers, total, nil
}

func (r *officerRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Officer, error) {
	var officers []model.Officer
	if len(ids) == 0 {
		return officers, nil
	}
	err := r.db.WithContext(ctx).
		Where("officer_id IN ?", ids).
		Order("name ASC").
		Find(&officers).Error
	return officers, err
}

func (r *officerRepo) Update(ctx context.Context, officer *model.Officer) error {
	return r.db.WithContext(ctx).Omit("Team").Save(officer).Error
}

func (r *officerRepo) BindFirebaseUID(ctx context.Context, officerID, uid string) error {
	return r.db.WithContext(ctx).
		Model(&model.Officer{}).
		Where("officer_id = ? AND firebase_uid IS NULL", officerID).
		Update("firebase_uid", uid).Error
}

func (r *officerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Officer{}).
		Where("officer_id = ?", id).
		Updates(softDelete(deletedBy)).Error
}
