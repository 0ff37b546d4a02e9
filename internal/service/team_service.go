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

// ── 小组模块业务错误 ──

var (
	ErrTeamNotFound    = errors.New("小组不存在")
	ErrTeamNameExists  = errors.New("小组名称已存在")
	ErrTeamHasAssigned = errors.New("小组下存在已分配的申请人，无法删除")
	ErrTeamInactive    = errors.New("小组已停用")
)

// TeamService 小组业务接口
type TeamService interface {
	Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeamResponse, error)
	List(ctx context.Context, req *dto.TeamListRequest) ([]dto.TeamResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerID string) (*dto.TeamResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teamService) Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error) {
	existing, err := s.repo.Team.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeamNameExists
	}

	team := &model.Team{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	team.CreatedBy = &callerID
	team.UpdatedBy = &callerID

	if err := s.repo.Team.Create(ctx, team); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTeamNameExists
		}
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}

	return s.toTeamResponse(ctx, team), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teamService) GetByID(ctx context.Context, id string) (*dto.TeamResponse, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toTeamResponse(ctx, team), nil
}

// ────────────────────── List ──────────────────────

func (s *teamService) List(ctx context.Context, req *dto.TeamListRequest) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出小组失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		result = append(result, *s.toTeamResponse(ctx, &teams[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *teamService) Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerID string) (*dto.TeamResponse, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != team.Name {
		existing, err := s.repo.Team.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrTeamNameExists
		}
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}
	if req.IsActive != nil {
		team.IsActive = *req.IsActive
	}

	team.UpdatedBy = &callerID

	if err := s.repo.Team.Update(ctx, team); err != nil {
		s.logger.Error("更新小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTeamResponse(ctx, team), nil
}

// ────────────────────── Delete ──────────────────────

func (s *teamService) Delete(ctx context.Context, id string, callerID string) error {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Team.CountAssigned(ctx, team.TeamID)
	if err != nil {
		s.logger.Error("统计小组已分配人数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrTeamHasAssigned
	}

	if err := s.repo.Team.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除小组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *teamService) toTeamResponse(ctx context.Context, team *model.Team) *dto.TeamResponse {
	assigned, err := s.repo.Team.CountAssigned(ctx, team.TeamID)
	if err != nil {
		s.logger.Warn("统计小组已分配人数失败，回退为0", zap.Error(err))
	}

	areas := make([]dto.ResearchAreaResponse, 0, len(team.ResearchAreas))
	for i := range team.ResearchAreas {
		areas = append(areas, toResearchAreaResponse(&team.ResearchAreas[i]))
	}

	return &dto.TeamResponse{
		ID:            team.TeamID,
		Name:          team.Name,
		Description:   team.Description,
		IsActive:      team.IsActive,
		ResearchAreas: areas,
		AssignedCount: assigned,
		CreatedAt:     formatTime(team.CreatedAt),
		UpdatedAt:     formatTime(team.UpdatedAt),
	}
}
