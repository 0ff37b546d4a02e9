package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

// ── 时间段模块业务错误 ──

var (
	ErrTimeSlotNotFound      = errors.New("时间段不存在")
	ErrTimeSlotInvalid       = errors.New("时间格式无效或开始时间不早于结束时间")
	ErrTimeSlotDuplicate     = errors.New("该日期已存在相同开始时间的时间段")
	ErrTimeSlotOutOfCycle    = errors.New("时间段日期不在纳新周期范围内")
	ErrTimeSlotInUse         = errors.New("时间段已安排面试，无法删除")
	ErrTimeSlotRangeTooLarge = errors.New("批量生成的日期范围过大")
)

// maxGenerateDays 批量生成允许的最大天数
const maxGenerateDays = 62

// TimeSlotService 时间段业务接口
type TimeSlotService interface {
	Create(ctx context.Context, req *dto.CreateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	// Generate 按日期范围与固定时长批量生成，已存在的时间段跳过
	Generate(ctx context.Context, req *dto.GenerateTimeSlotsRequest, callerID string) (*dto.GenerateTimeSlotsResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	cache  AvailabilityCache
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, cache AvailabilityCache, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, req *dto.CreateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	date, start, end, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !withinCycle(cycle, date) {
		return nil, ErrTimeSlotOutOfCycle
	}
	if err := s.ensureUnique(ctx, cycle.CycleID, date, start, ""); err != nil {
		return nil, err
	}

	slot := &model.TimeSlot{
		CycleID:   cycle.CycleID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID

	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTimeSlotDuplicate
		}
		s.logger.Error("创建时间段失败", zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, cycle.CycleID)
	return toTimeSlotResponse(slot), nil
}

// ────────────────────── Generate ──────────────────────

func (s *timeSlotService) Generate(ctx context.Context, req *dto.GenerateTimeSlotsRequest, callerID string) (*dto.GenerateTimeSlotsResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	from, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}
	to, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}
	if to.Before(from) {
		return nil, ErrTimeSlotInvalid
	}
	if to.Sub(from) > maxGenerateDays*24*time.Hour {
		return nil, ErrTimeSlotRangeTooLarge
	}
	if !withinCycle(cycle, from) || !withinCycle(cycle, to) {
		return nil, ErrTimeSlotOutOfCycle
	}

	dayStart, err := parseClock(req.DayStart)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}
	dayEnd, err := parseClock(req.DayEnd)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}
	if req.SlotMinutes <= 0 || dayStart+req.SlotMinutes > dayEnd {
		return nil, ErrTimeSlotInvalid
	}

	existing, err := s.repo.TimeSlot.List(ctx, cycle.CycleID, nil)
	if err != nil {
		s.logger.Error("查询已有时间段失败", zap.Error(err))
		return nil, err
	}
	taken := lo.SliceToMap(existing, func(ts model.TimeSlot) (string, struct{}) {
		return slotKey(ts.Date, normalizeClock(ts.StartTime)), struct{}{}
	})

	weekdays := lo.SliceToMap(req.Weekdays, func(d int) (time.Weekday, struct{}) {
		return time.Weekday(d), struct{}{}
	})

	resp := &dto.GenerateTimeSlotsResponse{}
	var slots []model.TimeSlot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if len(weekdays) > 0 {
			if _, ok := weekdays[day.Weekday()]; !ok {
				continue
			}
		}
		for m := dayStart; m+req.SlotMinutes <= dayEnd; m += req.SlotMinutes {
			start := formatClock(m)
			if _, ok := taken[slotKey(day, start)]; ok {
				resp.Skipped++
				continue
			}
			slot := model.TimeSlot{
				CycleID:   cycle.CycleID,
				Date:      day,
				StartTime: start,
				EndTime:   formatClock(m + req.SlotMinutes),
			}
			slot.CreatedBy = &callerID
			slot.UpdatedBy = &callerID
			slots = append(slots, slot)
		}
	}

	if len(slots) > 0 {
		if err := s.repo.TimeSlot.BatchCreate(ctx, slots); err != nil {
			s.logger.Error("批量生成时间段失败", zap.Error(err))
			return nil, err
		}
		s.invalidate(ctx, cycle.CycleID)
	}
	resp.Created = len(slots)

	s.logger.Info("批量生成时间段",
		zap.String("cycle_id", cycle.CycleID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTimeSlotResponse(slot), nil
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	cycle, err := resolveCycle(ctx, s.repo, req.CycleID)
	if err != nil {
		return nil, err
	}

	var date *time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return nil, ErrTimeSlotInvalid
		}
		date = &d
	}

	slots, err := s.repo.TimeSlot.List(ctx, cycle.CycleID, date)
	if err != nil {
		s.logger.Error("列出时间段失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toTimeSlotResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	dateStr := formatDate(slot.Date)
	startStr := normalizeClock(slot.StartTime)
	endStr := normalizeClock(slot.EndTime)
	if req.Date != nil {
		dateStr = *req.Date
	}
	if req.StartTime != nil {
		startStr = *req.StartTime
	}
	if req.EndTime != nil {
		endStr = *req.EndTime
	}

	date, start, end, err := parseSlot(dateStr, startStr, endStr)
	if err != nil {
		return nil, err
	}

	cycle, err := resolveCycle(ctx, s.repo, slot.CycleID)
	if err != nil {
		return nil, err
	}
	if !withinCycle(cycle, date) {
		return nil, ErrTimeSlotOutOfCycle
	}
	if err := s.ensureUnique(ctx, slot.CycleID, date, start, slot.TimeSlotID); err != nil {
		return nil, err
	}

	slot.Date = date
	slot.StartTime = start
	slot.EndTime = end
	slot.UpdatedBy = &callerID

	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		s.logger.Error("更新时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, slot.CycleID)
	return toTimeSlotResponse(slot), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, id string, callerID string) error {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}

	interviews, err := s.repo.Interview.List(ctx, repository.InterviewFilter{TimeSlotID: id})
	if err != nil {
		s.logger.Error("查询时间段面试失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if lo.SomeBy(interviews, func(i model.Interview) bool { return i.Status != model.InterviewCancelled }) {
		return ErrTimeSlotInUse
	}

	if err := s.repo.TimeSlot.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.invalidate(ctx, slot.CycleID)
	return nil
}

// ── 内部辅助方法 ──

func (s *timeSlotService) ensureUnique(ctx context.Context, cycleID string, date time.Time, start, selfID string) error {
	sameDay, err := s.repo.TimeSlot.List(ctx, cycleID, &date)
	if err != nil {
		return err
	}
	if lo.SomeBy(sameDay, func(ts model.TimeSlot) bool {
		return ts.TimeSlotID != selfID && normalizeClock(ts.StartTime) == start
	}) {
		return ErrTimeSlotDuplicate
	}
	return nil
}

func (s *timeSlotService) invalidate(ctx context.Context, cycleID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAvailability(ctx, cycleID); err != nil {
		s.logger.Warn("清除可用性缓存失败", zap.String("cycle_id", cycleID), zap.Error(err))
	}
}

// parseSlot 校验日期与起止时间，返回规范化后的值
func parseSlot(date, start, end string) (time.Time, string, string, error) {
	d, err := parseDate(date)
	if err != nil {
		return time.Time{}, "", "", ErrTimeSlotInvalid
	}
	startMin, err := parseClock(start)
	if err != nil {
		return time.Time{}, "", "", ErrTimeSlotInvalid
	}
	endMin, err := parseClock(end)
	if err != nil {
		return time.Time{}, "", "", ErrTimeSlotInvalid
	}
	if startMin >= endMin {
		return time.Time{}, "", "", ErrTimeSlotInvalid
	}
	return d, formatClock(startMin), formatClock(endMin), nil
}

func withinCycle(cycle *model.RecruitmentCycle, date time.Time) bool {
	day := formatDate(date)
	return day >= formatDate(cycle.StartsOn) && day <= formatDate(cycle.EndsOn)
}

func slotKey(date time.Time, start string) string {
	return formatDate(date) + " " + start
}
