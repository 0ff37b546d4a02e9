package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamu-thinktank/website-sub002/internal/availability"
	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
)

var (
	ErrInvalidTimeSlot = errors.New("包含不存在或不属于该周期的时间段")
)

// AvailabilityService 干事可用时间与可用性表业务接口
type AvailabilityService interface {
	GetMine(ctx context.Context, officerID string, req *dto.OfficerTimesRequest) (*dto.OfficerTimesResponse, error)
	// SetMine 整体替换干事在某周期勾选的时间段
	SetMine(ctx context.Context, officerID string, req *dto.SetOfficerTimesRequest) (*dto.OfficerTimesResponse, error)
	// Table 计算可用性表（按周期缓存原始数据）
	Table(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	// BuildInput 为 WebSocket 会话准备一次计算输入，计算交给后台 Worker
	BuildInput(ctx context.Context, req *dto.AvailabilityRequest) (string, availability.Input, error)
}

// cachedInput 缓存的是计算输入而不是结果，不同过滤参数可共用
type cachedInput struct {
	Slots      []availability.Slot      `json:"slots"`
	Selections []availability.Selection `json:"selections"`
}

type availabilityService struct {
	repo     *repository.Repository
	cache    AvailabilityCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(
	repo *repository.Repository,
	cache AvailabilityCache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) AvailabilityService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &availabilityService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: m, logger: logger}
}

// ────────────────────── GetMine ──────────────────────

func (s *availabilityService) GetMine(ctx context.Context, officerID string, req *dto.OfficerTimesRequest) (*dto.OfficerTimesResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	times, err := s.repo.OfficerTime.ListByOfficer(ctx, officerID, cycle.CycleID)
	if err != nil {
		s.logger.Error("查询可用时间失败", zap.String("officer_id", officerID), zap.Error(err))
		return nil, err
	}

	return &dto.OfficerTimesResponse{
		CycleID:     cycle.CycleID,
		TimeSlotIDs: lo.Map(times, func(t model.OfficerTime, _ int) string { return t.TimeSlotID }),
	}, nil
}

// ────────────────────── SetMine ──────────────────────

func (s *availabilityService) SetMine(ctx context.Context, officerID string, req *dto.SetOfficerTimesRequest) (*dto.OfficerTimesResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	ids := lo.Uniq(req.TimeSlotIDs)
	if len(ids) > 0 {
		slots, err := s.repo.TimeSlot.ListByIDs(ctx, ids)
		if err != nil {
			s.logger.Error("查询时间段失败", zap.Error(err))
			return nil, err
		}
		if len(slots) != len(ids) || lo.SomeBy(slots, func(ts model.TimeSlot) bool { return ts.CycleID != cycle.CycleID }) {
			return nil, ErrInvalidTimeSlot
		}
	}

	if err := s.repo.OfficerTime.Replace(ctx, officerID, cycle.CycleID, ids); err != nil {
		s.logger.Error("保存可用时间失败", zap.String("officer_id", officerID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, cycle.CycleID)
	s.logger.Info("干事更新可用时间",
		zap.String("officer_id", officerID),
		zap.String("cycle_id", cycle.CycleID),
		zap.Int("slots", len(ids)),
	)

	return &dto.OfficerTimesResponse{CycleID: cycle.CycleID, TimeSlotIDs: ids}, nil
}

// ────────────────────── Table ──────────────────────

func (s *availabilityService) Table(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	cycleID, in, err := s.BuildInput(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table := availability.Calculate(in.Slots, in.Selections, in.Options)
	s.metrics.ObserveCalculation(time.Since(start))

	return &dto.AvailabilityResponse{
		CycleID:     cycleID,
		MinOfficers: in.Options.MinOfficers,
		Table:       table,
	}, nil
}

// ────────────────────── BuildInput ──────────────────────

func (s *availabilityService) BuildInput(ctx context.Context, req *dto.AvailabilityRequest) (string, availability.Input, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return "", availability.Input{}, err
	}

	var (
		data *cachedInput
		cfg  *model.RecruitmentConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.loadInput(gctx, cycle.CycleID)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = s.repo.Config.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("加载可用性数据失败", zap.String("cycle_id", cycle.CycleID), zap.Error(err))
		return "", availability.Input{}, err
	}

	minOfficers := cfg.MinInterviewers
	if req.MinOfficers != nil {
		minOfficers = *req.MinOfficers
	}

	return cycle.CycleID, availability.Input{
		Slots:      data.Slots,
		Selections: data.Selections,
		Options: availability.Options{
			MinOfficers:      minOfficers,
			Officers:         splitIDs(req.OfficerIDs),
			RequiredOfficers: splitIDs(req.RequiredIDs),
		},
	}, nil
}

// loadInput 优先读缓存，未命中时并行查询时间段与勾选记录并回填
func (s *availabilityService) loadInput(ctx context.Context, cycleID string) (*cachedInput, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.GetAvailability(ctx, cycleID)
		if err != nil {
			s.logger.Warn("读取可用性缓存失败", zap.String("cycle_id", cycleID), zap.Error(err))
		} else if ok {
			var data cachedInput
			if err := json.Unmarshal(payload, &data); err == nil {
				s.metrics.CacheHit()
				return &data, nil
			}
			s.logger.Warn("可用性缓存内容损坏，重新加载", zap.String("cycle_id", cycleID))
		}
		s.metrics.CacheMiss()
	}

	var (
		slots []model.TimeSlot
		times []model.OfficerTime
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slots, err = s.repo.TimeSlot.List(gctx, cycleID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		times, err = s.repo.OfficerTime.ListByCycle(gctx, cycleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &cachedInput{
		Slots: lo.Map(slots, func(ts model.TimeSlot, _ int) availability.Slot { return toAvailabilitySlot(&ts) }),
		Selections: lo.Map(times, func(t model.OfficerTime, _ int) availability.Selection {
			return availability.Selection{OfficerID: t.OfficerID, SlotID: t.TimeSlotID}
		}),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(data); err == nil {
			if err := s.cache.SetAvailability(ctx, cycleID, payload, s.cacheTTL); err != nil {
				s.logger.Warn("写入可用性缓存失败", zap.String("cycle_id", cycleID), zap.Error(err))
			}
		}
	}
	return data, nil
}

func (s *availabilityService) invalidate(ctx context.Context, cycleID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAvailability(ctx, cycleID); err != nil {
		s.logger.Warn("清除可用性缓存失败", zap.String("cycle_id", cycleID), zap.Error(err))
	}
}

// splitIDs 支持重复参数与逗号分隔两种写法
func splitIDs(raw []string) []string {
	var ids []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	return lo.Uniq(ids)
}
