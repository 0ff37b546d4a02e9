package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
)

// ── 申请模块业务错误 ──

var (
	ErrApplicationNotFound  = errors.New("申请不存在")
	ErrApplicationsClosed   = errors.New("当前不在报名时间内")
	ErrDuplicateApplication = errors.New("该邮箱已在本周期提交过申请")
	ErrInvalidStatus        = errors.New("申请状态无效")
	ErrInvalidResearchArea  = errors.New("研究方向不存在")
	ErrLookupFailed         = errors.New("邮箱或查询码错误")
	ErrTransferSameStatus   = errors.New("源状态与目标状态相同")
)

const (
	lookupCodeLength   = 10
	lookupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// ApplicationService 申请业务接口
type ApplicationService interface {
	// Submit 公开提交申请，返回一次性查询码
	Submit(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error)
	// LookupStatus 申请人凭邮箱与查询码查看进度
	LookupStatus(ctx context.Context, req *dto.ApplicationStatusLookupRequest) (*dto.ApplicationStatusLookupResponse, error)
	List(ctx context.Context, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	GetDetail(ctx context.Context, id string) (*dto.ApplicationDetailResponse, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateApplicationStatusRequest, callerID string) (*dto.ApplicationResponse, error)
	// AssignTeam 分配小组，TeamID 为 nil 时取消分配
	AssignTeam(ctx context.Context, id string, req *dto.UpdateApplicationTeamRequest, callerID string) (*dto.ApplicationResponse, error)
	// Transfer 在单个事务中批量转移申请状态
	Transfer(ctx context.Context, req *dto.TransferApplicationsRequest, callerID string) (*dto.TransferApplicationsResponse, error)
}

type applicationService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, metrics: m, logger: logger, now: time.Now}
}

// ────────────────────── Submit ──────────────────────

func (s *applicationService) Submit(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	// 1. 周期与报名开关
	cycle, err := resolveCycle(ctx, s.repo, "")
	if err != nil {
		if errors.Is(err, ErrNoActiveCycle) {
			return nil, ErrApplicationsClosed
		}
		s.logger.Error("查询当前周期失败", zap.Error(err))
		return nil, err
	}
	cfg, err := s.repo.Config.Get(ctx)
	if err != nil {
		s.logger.Error("查询纳新配置失败", zap.Error(err))
		return nil, err
	}
	if !cfg.ApplicationsOpen || !withinCycle(cycle, s.now()) {
		return nil, ErrApplicationsClosed
	}

	// 2. 同一周期同一邮箱只能提交一次
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.Application.GetByCycleAndEmail(ctx, cycle.CycleID, email); err == nil {
		return nil, ErrDuplicateApplication
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}

	// 3. 意向小组与研究方向
	if req.PreferredTeamID != nil {
		team, err := s.repo.Team.GetByID(ctx, *req.PreferredTeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		if !team.IsActive {
			return nil, ErrTeamInactive
		}
	}
	areaIDs := lo.Uniq(req.ResearchAreaIDs)
	if len(areaIDs) > 0 {
		areas, err := s.repo.ResearchArea.ListByIDs(ctx, areaIDs)
		if err != nil {
			s.logger.Error("查询研究方向失败", zap.Error(err))
			return nil, err
		}
		if len(areas) != len(areaIDs) {
			return nil, ErrInvalidResearchArea
		}
	}

	// 4. 查询码只返回一次，库中仅存哈希
	code, err := generateLookupCode()
	if err != nil {
		s.logger.Error("生成查询码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("查询码哈希失败", zap.Error(err))
		return nil, err
	}

	app := &model.Application{
		CycleID:         cycle.CycleID,
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		UIN:             req.UIN,
		Phone:           req.Phone,
		Major:           req.Major,
		GradYear:        req.GradYear,
		Statement:       req.Statement,
		Status:          model.StatusSubmitted,
		PreferredTeamID: req.PreferredTeamID,
		LookupCodeHash:  string(hash),
	}

	if err := s.repo.Application.Create(ctx, app, areaIDs); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateApplication
		}
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	s.metrics.ApplicationSubmitted()
	s.logger.Info("收到新申请", zap.String("application_id", app.ApplicationID), zap.String("cycle_id", cycle.CycleID))

	return &dto.SubmitApplicationResponse{
		ApplicationID: app.ApplicationID,
		LookupCode:    code,
		Status:        app.Status,
	}, nil
}

// generateLookupCode 生成不含易混淆字符的随机查询码
func generateLookupCode() (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(lookupCodeAlphabet)))
	for i := 0; i < lookupCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(lookupCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// ────────────────────── LookupStatus ──────────────────────

func (s *applicationService) LookupStatus(ctx context.Context, req *dto.ApplicationStatusLookupRequest) (*dto.ApplicationStatusLookupResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, "")
	if err != nil {
		if errors.Is(err, ErrNoActiveCycle) {
			return nil, ErrLookupFailed
		}
		return nil, err
	}

	app, err := s.repo.Application.GetByCycleAndEmail(ctx, cycle.CycleID, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLookupFailed
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	if !checkLookupCode(app, req.Code) {
		return nil, ErrLookupFailed
	}

	interviews, err := s.repo.Interview.List(ctx, repository.InterviewFilter{ApplicationID: app.ApplicationID})
	if err != nil {
		s.logger.Error("查询面试安排失败", zap.Error(err))
		return nil, err
	}

	summaries := make([]dto.InterviewSummary, 0, len(interviews))
	for _, iv := range interviews {
		if iv.Status == model.InterviewCancelled {
			continue
		}
		summary := dto.InterviewSummary{Location: iv.Location, Status: iv.Status}
		if iv.TimeSlot != nil {
			summary.Date = formatDate(iv.TimeSlot.Date)
			summary.StartTime = normalizeClock(iv.TimeSlot.StartTime)
			summary.EndTime = normalizeClock(iv.TimeSlot.EndTime)
		}
		summaries = append(summaries, summary)
	}

	return &dto.ApplicationStatusLookupResponse{
		ApplicationID: app.ApplicationID,
		Name:          app.Name,
		Status:        app.Status,
		CycleName:     cycle.Name,
		HasResume:     app.ResumeFileID != "",
		Interviews:    summaries,
		SubmittedAt:   formatTime(app.CreatedAt),
	}, nil
}

func checkLookupCode(app *model.Application, code string) bool {
	if app.LookupCodeHash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(app.LookupCodeHash), []byte(strings.ToUpper(strings.TrimSpace(code)))) == nil
}

// ────────────────────── List ──────────────────────

func (s *applicationService) List(ctx context.Context, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	filter := repository.ApplicationFilter{
		CycleID: req.CycleID,
		Status:  req.Status,
		TeamID:  req.TeamID,
		Keyword: req.Keyword,
	}
	apps, total, err := s.repo.Application.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出申请失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *applicationService) GetDetail(ctx context.Context, id string) (*dto.ApplicationDetailResponse, error) {
	app, err := s.repo.Application.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请详情失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	interviews, err := s.repo.Interview.List(ctx, repository.InterviewFilter{ApplicationID: id})
	if err != nil {
		s.logger.Error("查询申请面试失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	detail := &dto.ApplicationDetailResponse{
		ApplicationResponse: toApplicationResponse(app),
		Phone:               app.Phone,
		Statement:           app.Statement,
		ResumeFileID:        app.ResumeFileID,
		ResumeURL:           app.ResumeURL,
		ResearchAreas:       make([]dto.ResearchAreaResponse, 0, len(app.ResearchAreas)),
		Reviews:             make([]dto.ReviewResponse, 0, len(app.Reviews)),
		Interviews:          make([]dto.InterviewResponse, 0, len(interviews)),
	}
	for i := range app.ResearchAreas {
		detail.ResearchAreas = append(detail.ResearchAreas, toResearchAreaResponse(&app.ResearchAreas[i]))
	}
	for i := range app.Reviews {
		detail.Reviews = append(detail.Reviews, *toReviewResponse(&app.Reviews[i]))
	}
	for i := range interviews {
		detail.Interviews = append(detail.Interviews, *toInterviewResponse(&interviews[i]))
	}
	return detail, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *applicationService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateApplicationStatusRequest, callerID string) (*dto.ApplicationResponse, error) {
	if !model.IsValidApplicationStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	app, err := s.getForUpdate(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}

	if app.Status != req.Status {
		from := app.Status
		app.Status = req.Status
		app.UpdatedBy = &callerID
		if err := s.repo.Application.Update(ctx, app); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("更新申请状态失败", zap.String("id", id), zap.Error(err))
			}
			return nil, err
		}
		s.logger.Info("申请状态变更",
			zap.String("application_id", id),
			zap.String("from", from),
			zap.String("to", req.Status),
			zap.String("operator", callerID),
		)
	}

	return s.reload(ctx, id)
}

// ────────────────────── AssignTeam ──────────────────────

func (s *applicationService) AssignTeam(ctx context.Context, id string, req *dto.UpdateApplicationTeamRequest, callerID string) (*dto.ApplicationResponse, error) {
	app, err := s.getForUpdate(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}

	if req.TeamID != nil {
		team, err := s.repo.Team.GetByID(ctx, *req.TeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			s.logger.Error("查询小组失败", zap.Error(err))
			return nil, err
		}
		if !team.IsActive {
			return nil, ErrTeamInactive
		}
	}

	app.AssignedTeamID = req.TeamID
	app.UpdatedBy = &callerID
	if err := s.repo.Application.Update(ctx, app); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("分配小组失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.reload(ctx, id)
}

// ────────────────────── Transfer ──────────────────────

func (s *applicationService) Transfer(ctx context.Context, req *dto.TransferApplicationsRequest, callerID string) (*dto.TransferApplicationsResponse, error) {
	if !model.IsValidApplicationStatus(req.FromStatus) || !model.IsValidApplicationStatus(req.ToStatus) {
		return nil, ErrInvalidStatus
	}
	if req.FromStatus == req.ToStatus {
		return nil, ErrTransferSameStatus
	}
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	var moved int64
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		n, err := txRepo.Application.TransferStatus(ctx, cycle.CycleID, req.FromStatus, req.ToStatus, lo.Uniq(req.ApplicationIDs), callerID)
		if err != nil {
			return err
		}
		moved = n
		return nil
	})
	if err != nil {
		s.logger.Error("批量转移申请状态失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量转移申请状态",
		zap.String("cycle_id", cycle.CycleID),
		zap.String("from", req.FromStatus),
		zap.String("to", req.ToStatus),
		zap.Int64("moved", moved),
		zap.String("operator", callerID),
	)
	return &dto.TransferApplicationsResponse{Moved: moved}, nil
}

// ── 内部辅助方法 ──

// getForUpdate 读取申请并校验客户端携带的版本号（0 表示不校验）
func (s *applicationService) getForUpdate(ctx context.Context, id string, version int) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if version > 0 && version != app.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	return app, nil
}

func (s *applicationService) reload(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toApplicationResponse(app)
	return &resp, nil
}

func toApplicationResponse(a *model.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:            a.ApplicationID,
		CycleID:       a.CycleID,
		Name:          a.Name,
		Email:         a.Email,
		UIN:           a.UIN,
		Major:         a.Major,
		GradYear:      a.GradYear,
		Status:        a.Status,
		PreferredTeam: toTeamBrief(a.PreferredTeam),
		AssignedTeam:  toTeamBrief(a.AssignedTeam),
		ScoreAvg:      a.ScoreAvg,
		ReviewCount:   a.ReviewCount,
		HasResume:     a.ResumeFileID != "",
		Version:       a.Version,
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}
