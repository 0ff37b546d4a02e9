package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/config"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	"github.com/tamu-thinktank/website-sub002/pkg/identity"
	"github.com/tamu-thinktank/website-sub002/pkg/jwt"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
	"github.com/tamu-thinktank/website-sub002/pkg/storage"
)

// TokenBlacklist 已注销 Token 的黑名单（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// OfficerRevoker 干事被停用、删除或改变身份时吊销其已签发的 Token
type OfficerRevoker interface {
	RevokeOfficer(ctx context.Context, officerID string, ttl time.Duration) error
}

// AvailabilityCache 可用性表缓存（按周期）
type AvailabilityCache interface {
	GetAvailability(ctx context.Context, cycleID string) ([]byte, bool, error)
	SetAvailability(ctx context.Context, cycleID string, payload []byte, ttl time.Duration) error
	InvalidateAvailability(ctx context.Context, cycleID string) error
}

// Deps 可选的外部依赖，均允许为 nil（Redis / Firebase / 存储未配置时降级）
type Deps struct {
	Verifier  identity.Verifier
	Uploader  storage.Uploader
	Blacklist TokenBlacklist
	Revoker   OfficerRevoker
	Cache     AvailabilityCache
	Metrics   *metrics.Metrics
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Officer      OfficerService
	Team         TeamService
	ResearchArea ResearchAreaService
	Cycle        CycleService
	TimeSlot     TimeSlotService
	Config       RecruitmentConfigService
	Application  ApplicationService
	Review       ReviewService
	Resume       ResumeService
	Interview    InterviewService
	Availability AvailabilityService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, deps.Verifier, deps.Blacklist, logger),
		Officer:      NewOfficerService(repo, deps.Cache, deps.Revoker, jwtMgr.AccessTokenTTL(), logger),
		Team:         NewTeamService(repo, logger),
		ResearchArea: NewResearchAreaService(repo, logger),
		Cycle:        NewCycleService(repo, logger),
		TimeSlot:     NewTimeSlotService(repo, deps.Cache, logger),
		Config:       NewRecruitmentConfigService(repo, logger),
		Application:  NewApplicationService(repo, deps.Metrics, logger),
		Review:       NewReviewService(repo, logger),
		Resume:       NewResumeService(repo, deps.Uploader, cfg.Storage.MaxResumeBytes, logger),
		Interview:    NewInterviewService(repo, logger),
		Availability: NewAvailabilityService(repo, deps.Cache, cfg.Redis.AvailabilityTTL, deps.Metrics, logger),
		Export:       NewExportService(repo, logger),
	}
}
