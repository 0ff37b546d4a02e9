package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

var (
	ErrResearchAreaNotFound   = errors.New("研究方向不存在")
	ErrResearchAreaNameExists = errors.New("该小组下已存在同名研究方向")
)

// ResearchAreaService 研究方向业务接口
type ResearchAreaService interface {
	Create(ctx context.Context, req *dto.CreateResearchAreaRequest, callerID string) (*dto.ResearchAreaResponse, error)
	List(ctx context.Context, req *dto.ResearchAreaListRequest) ([]dto.ResearchAreaResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateResearchAreaRequest, callerID string) (*dto.ResearchAreaResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type researchAreaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResearchAreaService 创建 ResearchAreaService 实例
func NewResearchAreaService(repo *repository.Repository, logger *zap.Logger) ResearchAreaService {
	return &researchAreaService{repo: repo, logger: logger}
}

func (s *researchAreaService) Create(ctx context.Context, req *dto.CreateResearchAreaRequest, callerID string) (*dto.ResearchAreaResponse, error) {
	team, err := s.repo.Team.GetByID(ctx, req.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if !team.IsActive {
		return nil, ErrTeamInactive
	}

	if _, err := s.repo.ResearchArea.GetByTeamAndName(ctx, req.TeamID, req.Name); err == nil {
		return nil, ErrResearchAreaNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	area := &model.ResearchArea{
		TeamID:      req.TeamID,
		Name:        req.Name,
		Description: req.Description,
	}
	area.CreatedBy = &callerID
	area.UpdatedBy = &callerID

	if err := s.repo.ResearchArea.Create(ctx, area); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrResearchAreaNameExists
		}
		s.logger.Error("创建研究方向失败", zap.Error(err))
		return nil, err
	}

	resp := toResearchAreaResponse(area)
	return &resp, nil
}

func (s *researchAreaService) List(ctx context.Context, req *dto.ResearchAreaListRequest) ([]dto.ResearchAreaResponse, error) {
	areas, err := s.repo.ResearchArea.List(ctx, req.TeamID)
	if err != nil {
		s.logger.Error("列出研究方向失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ResearchAreaResponse, 0, len(areas))
	for i := range areas {
		result = append(result, toResearchAreaResponse(&areas[i]))
	}
	return result, nil
}

func (s *researchAreaService) Update(ctx context.Context, id string, req *dto.UpdateResearchAreaRequest, callerID string) (*dto.ResearchAreaResponse, error) {
	area, err := s.repo.ResearchArea.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchAreaNotFound
		}
		s.logger.Error("查询研究方向失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != area.Name {
		if _, err := s.repo.ResearchArea.GetByTeamAndName(ctx, area.TeamID, *req.Name); err == nil {
			return nil, ErrResearchAreaNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		area.Name = *req.Name
	}
	if req.Description != nil {
		area.Description = *req.Description
	}
	area.UpdatedBy = &callerID

	if err := s.repo.ResearchArea.Update(ctx, area); err != nil {
		s.logger.Error("更新研究方向失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toResearchAreaResponse(area)
	return &resp, nil
}

func (s *researchAreaService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.ResearchArea.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResearchAreaNotFound
		}
		return err
	}
	if err := s.repo.ResearchArea.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除研究方向失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
