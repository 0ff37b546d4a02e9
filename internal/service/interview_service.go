package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/availability"
	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

// ── 面试模块业务错误 ──

var (
	ErrInterviewNotFound         = errors.New("面试不存在")
	ErrInterviewForbidden        = errors.New("只能修改自己负责的面试")
	ErrInterviewStatusTransition = errors.New("只有待进行的面试可以变更状态")
	ErrInterviewCancelled        = errors.New("面试已取消")
	ErrOfficerUnavailable        = errors.New("该干事未勾选此时间段")
	ErrOfficerBusy               = errors.New("该干事在此时间段已有面试")
	ErrApplicantBusy             = errors.New("申请人在此时间段已有面试")
	ErrSlotCycleMismatch         = errors.New("时间段与申请不属于同一纳新周期")
	ErrApplicationFinalized      = errors.New("申请已有最终结果，无法安排面试")
)

// InterviewService 面试业务接口
type InterviewService interface {
	List(ctx context.Context, req *dto.InterviewListRequest, callerID string) ([]dto.InterviewResponse, error)
	GetByID(ctx context.Context, id string) (*dto.InterviewResponse, error)
	// Match 手动为申请匹配干事与时间段，申请进入 interviewing
	Match(ctx context.Context, req *dto.MatchInterviewRequest, callerID string) (*dto.InterviewResponse, error)
	// Candidates 仍有不少于 min_interviewers 名空闲干事的时间段
	Candidates(ctx context.Context, applicationID string) ([]dto.CandidateSlotResponse, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateInterviewStatusRequest, callerID, callerRole string) (*dto.InterviewResponse, error)
	ListNotes(ctx context.Context, interviewID string) ([]dto.NoteResponse, error)
	AddNote(ctx context.Context, interviewID string, req *dto.CreateNoteRequest, callerID string) (*dto.NoteResponse, error)
}

type interviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInterviewService 创建 InterviewService 实例
func NewInterviewService(repo *repository.Repository, logger *zap.Logger) InterviewService {
	return &interviewService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *interviewService) List(ctx context.Context, req *dto.InterviewListRequest, callerID string) ([]dto.InterviewResponse, error) {
	filter := repository.InterviewFilter{
		CycleID:       req.CycleID,
		OfficerID:     req.OfficerID,
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
	}
	if req.Mine {
		filter.OfficerID = callerID
	}

	interviews, err := s.repo.Interview.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出面试失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.InterviewResponse, 0, len(interviews))
	for i := range interviews {
		result = append(result, *toInterviewResponse(&interviews[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *interviewService) GetByID(ctx context.Context, id string) (*dto.InterviewResponse, error) {
	iv, err := s.getInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInterviewResponse(iv), nil
}

// ────────────────────── Match ──────────────────────

func (s *interviewService) Match(ctx context.Context, req *dto.MatchInterviewRequest, callerID string) (*dto.InterviewResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	if app.Status == model.StatusAccepted || app.Status == model.StatusRejected {
		return nil, ErrApplicationFinalized
	}

	officer, err := s.repo.Officer.GetByID(ctx, req.OfficerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficerNotFound
		}
		s.logger.Error("查询干事失败", zap.Error(err))
		return nil, err
	}
	if !officer.IsActive {
		return nil, ErrOfficerInactive
	}

	slot, err := s.repo.TimeSlot.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.Error(err))
		return nil, err
	}
	if slot.CycleID != app.CycleID {
		return nil, ErrSlotCycleMismatch
	}

	location := req.Location
	if location == "" {
		cfg, err := s.repo.Config.Get(ctx)
		if err != nil {
			s.logger.Error("查询纳新配置失败", zap.Error(err))
			return nil, err
		}
		location = cfg.InterviewLocation
	}

	interview := &model.Interview{
		CycleID:       app.CycleID,
		ApplicationID: app.ApplicationID,
		OfficerID:     officer.OfficerID,
		TimeSlotID:    slot.TimeSlotID,
		Location:      location,
		Status:        model.InterviewScheduled,
	}
	interview.CreatedBy = &callerID
	interview.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		available, err := txRepo.OfficerTime.Exists(ctx, officer.OfficerID, slot.TimeSlotID)
		if err != nil {
			return err
		}
		if !available {
			return ErrOfficerUnavailable
		}

		busy, err := txRepo.Interview.HasActive(ctx, officer.OfficerID, slot.TimeSlotID)
		if err != nil {
			return err
		}
		if busy {
			return ErrOfficerBusy
		}

		existing, err := txRepo.Interview.List(ctx, repository.InterviewFilter{
			ApplicationID: app.ApplicationID,
			TimeSlotID:    slot.TimeSlotID,
			Status:        model.InterviewScheduled,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrApplicantBusy
		}

		if err := txRepo.Interview.Create(ctx, interview); err != nil {
			return err
		}

		if app.Status != model.StatusInterviewing {
			app.Status = model.StatusInterviewing
			app.UpdatedBy = &callerID
			if err := txRepo.Application.Update(ctx, app); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrOfficerBusy
		case errors.Is(err, ErrOfficerUnavailable), errors.Is(err, ErrOfficerBusy),
			errors.Is(err, ErrApplicantBusy), errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("匹配面试失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("已匹配面试",
		zap.String("interview_id", interview.InterviewID),
		zap.String("application_id", app.ApplicationID),
		zap.String("officer_id", officer.OfficerID),
		zap.String("time_slot_id", slot.TimeSlotID),
	)

	return s.GetByID(ctx, interview.InterviewID)
}

// ────────────────────── Candidates ──────────────────────

func (s *interviewService) Candidates(ctx context.Context, applicationID string) ([]dto.CandidateSlotResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	var (
		slots      []model.TimeSlot
		times      []model.OfficerTime
		interviews []model.Interview
		cfg        *model.RecruitmentConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slots, err = s.repo.TimeSlot.List(gctx, app.CycleID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		times, err = s.repo.OfficerTime.ListByCycle(gctx, app.CycleID)
		return err
	})
	g.Go(func() error {
		var err error
		interviews, err = s.repo.Interview.ListActiveByCycle(gctx, app.CycleID)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = s.repo.Config.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("加载候选时间数据失败", zap.Error(err))
		return nil, err
	}

	// 已占用的 (干事, 时间段) 以及申请人自己已有面试的时间段
	busy := make(map[string]struct{}, len(interviews))
	applicantSlots := make(map[string]struct{})
	for _, iv := range interviews {
		busy[iv.OfficerID+"|"+iv.TimeSlotID] = struct{}{}
		if iv.ApplicationID == app.ApplicationID {
			applicantSlots[iv.TimeSlotID] = struct{}{}
		}
	}

	selections := make([]availability.Selection, 0, len(times))
	for _, t := range times {
		if _, ok := busy[t.OfficerID+"|"+t.TimeSlotID]; ok {
			continue
		}
		if _, ok := applicantSlots[t.TimeSlotID]; ok {
			continue
		}
		selections = append(selections, availability.Selection{OfficerID: t.OfficerID, SlotID: t.TimeSlotID})
	}
	if len(selections) == 0 {
		return []dto.CandidateSlotResponse{}, nil
	}

	// 只统计仍在职的干事
	officerIDs := lo.Uniq(lo.Map(selections, func(sel availability.Selection, _ int) string { return sel.OfficerID }))
	officers, err := s.repo.Officer.ListByIDs(ctx, officerIDs)
	if err != nil {
		return nil, err
	}
	active := lo.Filter(officers, func(o model.Officer, _ int) bool { return o.IsActive })
	if len(active) == 0 {
		return []dto.CandidateSlotResponse{}, nil
	}
	officerByID := lo.KeyBy(active, func(o model.Officer) string { return o.OfficerID })

	slotByID := make(map[string]*model.TimeSlot, len(slots))
	avSlots := make([]availability.Slot, 0, len(slots))
	for i := range slots {
		slotByID[slots[i].TimeSlotID] = &slots[i]
		avSlots = append(avSlots, toAvailabilitySlot(&slots[i]))
	}

	table := availability.Calculate(avSlots, selections, availability.Options{
		MinOfficers: cfg.MinInterviewers,
		Officers:    lo.Keys(officerByID),
	})

	candidates := table.Candidates()
	result := make([]dto.CandidateSlotResponse, 0, len(candidates))
	for _, row := range candidates {
		briefs := make([]dto.OfficerBrief, 0, len(row.OfficerIDs))
		for _, id := range row.OfficerIDs {
			o := officerByID[id]
			briefs = append(briefs, *toOfficerBrief(&o))
		}
		result = append(result, dto.CandidateSlotResponse{
			TimeSlot: *toTimeSlotResponse(slotByID[row.ID]),
			Officers: briefs,
		})
	}
	return result, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *interviewService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateInterviewStatusRequest, callerID, callerRole string) (*dto.InterviewResponse, error) {
	iv, err := s.getInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != model.RoleAdmin && iv.OfficerID != callerID {
		return nil, ErrInterviewForbidden
	}
	if iv.Status != model.InterviewScheduled {
		return nil, ErrInterviewStatusTransition
	}
	switch req.Status {
	case model.InterviewCompleted, model.InterviewCancelled, model.InterviewNoShow:
	default:
		return nil, ErrInterviewStatusTransition
	}
	if req.Version > 0 && req.Version != iv.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	iv.Status = req.Status
	iv.UpdatedBy = &callerID
	if err := s.repo.Interview.UpdateStatus(ctx, iv); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新面试状态失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toInterviewResponse(iv), nil
}

// ────────────────────── Notes ──────────────────────

func (s *interviewService) ListNotes(ctx context.Context, interviewID string) ([]dto.NoteResponse, error) {
	if _, err := s.getInterview(ctx, interviewID); err != nil {
		return nil, err
	}

	notes, err := s.repo.Note.ListByInterview(ctx, interviewID)
	if err != nil {
		s.logger.Error("列出面试记录失败", zap.String("interview_id", interviewID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		result = append(result, *toNoteResponse(&notes[i]))
	}
	return result, nil
}

func (s *interviewService) AddNote(ctx context.Context, interviewID string, req *dto.CreateNoteRequest, callerID string) (*dto.NoteResponse, error) {
	iv, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == model.InterviewCancelled {
		return nil, ErrInterviewCancelled
	}

	note := &model.InterviewNote{
		InterviewID:    interviewID,
		OfficerID:      callerID,
		Content:        req.Content,
		Rating:         req.Rating,
		Recommendation: req.Recommendation,
	}
	note.CreatedBy = &callerID
	note.UpdatedBy = &callerID

	if err := s.repo.Note.Create(ctx, note); err != nil {
		s.logger.Error("添加面试记录失败", zap.String("interview_id", interviewID), zap.Error(err))
		return nil, err
	}

	if officer, err := s.repo.Officer.GetByID(ctx, callerID); err == nil {
		note.Officer = officer
	}
	return toNoteResponse(note), nil
}

// ── 内部辅助方法 ──

func (s *interviewService) getInterview(ctx context.Context, id string) (*model.Interview, error) {
	iv, err := s.repo.Interview.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		s.logger.Error("查询面试失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return iv, nil
}

func toNoteResponse(n *model.InterviewNote) *dto.NoteResponse {
	return &dto.NoteResponse{
		ID:             n.NoteID,
		InterviewID:    n.InterviewID,
		Officer:        toOfficerBrief(n.Officer),
		Content:        n.Content,
		Rating:         n.Rating,
		Recommendation: n.Recommendation,
		CreatedAt:      formatTime(n.CreatedAt),
	}
}
