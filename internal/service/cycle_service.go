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

// ── 纳新周期模块业务错误 ──

var (
	ErrCycleNotFound     = errors.New("纳新周期不存在")
	ErrNoActiveCycle     = errors.New("当前没有进行中的纳新周期")
	ErrCycleDateInvalid  = errors.New("周期结束日期不能早于开始日期")
	ErrCycleActiveDelete = errors.New("不能删除进行中的纳新周期")
)

// CycleService 纳新周期业务接口
type CycleService interface {
	Create(ctx context.Context, req *dto.CreateCycleRequest, callerID string) (*dto.CycleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CycleResponse, error)
	GetActive(ctx context.Context) (*dto.CycleResponse, error)
	List(ctx context.Context) ([]dto.CycleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCycleRequest, callerID string) (*dto.CycleResponse, error)
	// Activate 设为当前周期（同一时间仅一个）
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
}

type cycleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCycleService 创建 CycleService 实例
func NewCycleService(repo *repository.Repository, logger *zap.Logger) CycleService {
	return &cycleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *cycleService) Create(ctx context.Context, req *dto.CreateCycleRequest, callerID string) (*dto.CycleResponse, error) {
	startsOn, err := parseDate(req.StartsOn)
	if err != nil {
		return nil, ErrCycleDateInvalid
	}
	endsOn, err := parseDate(req.EndsOn)
	if err != nil {
		return nil, ErrCycleDateInvalid
	}
	if endsOn.Before(startsOn) {
		return nil, ErrCycleDateInvalid
	}

	cycle := &model.RecruitmentCycle{
		Name:     req.Name,
		StartsOn: startsOn,
		EndsOn:   endsOn,
	}
	cycle.CreatedBy = &callerID
	cycle.UpdatedBy = &callerID

	if err := s.repo.Cycle.Create(ctx, cycle); err != nil {
		s.logger.Error("创建纳新周期失败", zap.Error(err))
		return nil, err
	}

	return toCycleResponse(cycle), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *cycleService) GetByID(ctx context.Context, id string) (*dto.CycleResponse, error) {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		s.logger.Error("查询纳新周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCycleResponse(cycle), nil
}

// ────────────────────── GetActive ──────────────────────

func (s *cycleService) GetActive(ctx context.Context) (*dto.CycleResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, "")
	if err != nil {
		if !errors.Is(err, ErrNoActiveCycle) {
			s.logger.Error("查询当前纳新周期失败", zap.Error(err))
		}
		return nil, err
	}
	return toCycleResponse(cycle), nil
}

// ────────────────────── List ──────────────────────

func (s *cycleService) List(ctx context.Context) ([]dto.CycleResponse, error) {
	cycles, err := s.repo.Cycle.List(ctx)
	if err != nil {
		s.logger.Error("列出纳新周期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CycleResponse, 0, len(cycles))
	for i := range cycles {
		result = append(result, *toCycleResponse(&cycles[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *cycleService) Update(ctx context.Context, id string, req *dto.UpdateCycleRequest, callerID string) (*dto.CycleResponse, error) {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		s.logger.Error("查询纳新周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		cycle.Name = *req.Name
	}
	if req.StartsOn != nil {
		startsOn, err := parseDate(*req.StartsOn)
		if err != nil {
			return nil, ErrCycleDateInvalid
		}
		cycle.StartsOn = startsOn
	}
	if req.EndsOn != nil {
		endsOn, err := parseDate(*req.EndsOn)
		if err != nil {
			return nil, ErrCycleDateInvalid
		}
		cycle.EndsOn = endsOn
	}
	if cycle.EndsOn.Before(cycle.StartsOn) {
		return nil, ErrCycleDateInvalid
	}

	cycle.UpdatedBy = &callerID

	if err := s.repo.Cycle.Update(ctx, cycle); err != nil {
		s.logger.Error("更新纳新周期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCycleResponse(cycle), nil
}

// ────────────────────── Activate ──────────────────────

func (s *cycleService) Activate(ctx context.Context, id string, callerID string) error {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCycleNotFound
		}
		s.logger.Error("查询纳新周期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// ClearActive + Update 需原子执行
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Cycle.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除当前周期失败", zap.Error(err))
		return err
	}

	cycle.IsActive = true
	cycle.UpdatedBy = &callerID

	if err := txRepo.Cycle.Update(ctx, cycle); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活纳新周期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("切换当前纳新周期", zap.String("cycle_id", id), zap.String("operator", callerID))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *cycleService) Delete(ctx context.Context, id string, callerID string) error {
	cycle, err := s.repo.Cycle.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCycleNotFound
		}
		s.logger.Error("查询纳新周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if cycle.IsActive {
		return ErrCycleActiveDelete
	}

	if err := s.repo.Cycle.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除纳新周期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toCycleResponse(cycle *model.RecruitmentCycle) *dto.CycleResponse {
	return &dto.CycleResponse{
		ID:        cycle.CycleID,
		Name:      cycle.Name,
		StartsOn:  formatDate(cycle.StartsOn),
		EndsOn:    formatDate(cycle.EndsOn),
		IsActive:  cycle.IsActive,
		CreatedAt: formatTime(cycle.CreatedAt),
		UpdatedAt: formatTime(cycle.UpdatedAt),
	}
}
