package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

// RecruitmentConfigService 纳新配置业务接口
type RecruitmentConfigService interface {
	Get(ctx context.Context) (*dto.RecruitmentConfigResponse, error)
	Update(ctx context.Context, req *dto.UpdateRecruitmentConfigRequest, callerID string) (*dto.RecruitmentConfigResponse, error)
}

type recruitmentConfigService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRecruitmentConfigService 创建 RecruitmentConfigService 实例
func NewRecruitmentConfigService(repo *repository.Repository, logger *zap.Logger) RecruitmentConfigService {
	return &recruitmentConfigService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *recruitmentConfigService) Get(ctx context.Context) (*dto.RecruitmentConfigResponse, error) {
	cfg, err := s.repo.Config.Get(ctx)
	if err != nil {
		s.logger.Error("查询纳新配置失败", zap.Error(err))
		return nil, err
	}
	return toRecruitmentConfigResponse(cfg), nil
}

// ────────────────────── Update ──────────────────────

func (s *recruitmentConfigService) Update(ctx context.Context, req *dto.UpdateRecruitmentConfigRequest, callerID string) (*dto.RecruitmentConfigResponse, error) {
	cfg, err := s.repo.Config.Get(ctx)
	if err != nil {
		s.logger.Error("查询纳新配置失败", zap.Error(err))
		return nil, err
	}

	if req.ApplicationsOpen != nil {
		cfg.ApplicationsOpen = *req.ApplicationsOpen
	}
	if req.MinInterviewers != nil {
		cfg.MinInterviewers = *req.MinInterviewers
	}
	if req.InterviewLocation != nil {
		cfg.InterviewLocation = *req.InterviewLocation
	}

	cfg.UpdatedBy = &callerID

	if err := s.repo.Config.Update(ctx, cfg); err != nil {
		s.logger.Error("更新纳新配置失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("纳新配置已更新",
		zap.Bool("applications_open", cfg.ApplicationsOpen),
		zap.Int("min_interviewers", cfg.MinInterviewers),
		zap.String("operator", callerID),
	)
	return toRecruitmentConfigResponse(cfg), nil
}

func toRecruitmentConfigResponse(cfg *model.RecruitmentConfig) *dto.RecruitmentConfigResponse {
	return &dto.RecruitmentConfigResponse{
		ApplicationsOpen:  cfg.ApplicationsOpen,
		MinInterviewers:   cfg.MinInterviewers,
		InterviewLocation: cfg.InterviewLocation,
		UpdatedAt:         formatTime(cfg.UpdatedAt),
	}
}
