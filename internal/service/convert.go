package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/availability"
	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	timeLayout  = "2006-01-02T15:04:05Z07:00"
)

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

// normalizeClock PostgreSQL 的 TIME 列读出为 "HH:MM:SS"，统一截为 "HH:MM"
func normalizeClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// parseClock 解析 "HH:MM"，返回自零点起的分钟数
func parseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, normalizeClock(strings.TrimSpace(s)))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute).Format(clockLayout)
}

func strPtr(s string) *string { return &s }

// resolveCycle cycleID 为空时取当前激活周期
func resolveCycle(ctx context.Context, repo *repository.Repository, cycleID string) (*model.RecruitmentCycle, error) {
	if cycleID == "" {
		cycle, err := repo.Cycle.GetActive(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoActiveCycle
			}
			return nil, err
		}
		return cycle, nil
	}
	cycle, err := repo.Cycle.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, err
	}
	return cycle, nil
}

// ── 模型 → DTO ──

func toTeamBrief(t *model.Team) *dto.TeamBrief {
	if t == nil {
		return nil
	}
	return &dto.TeamBrief{ID: t.TeamID, Name: t.Name}
}

func toOfficerBrief(o *model.Officer) *dto.OfficerBrief {
	if o == nil {
		return nil
	}
	return &dto.OfficerBrief{ID: o.OfficerID, Name: o.Name}
}

func toApplicantBrief(a *model.Application) *dto.ApplicantBrief {
	if a == nil {
		return nil
	}
	return &dto.ApplicantBrief{ID: a.ApplicationID, Name: a.Name, Email: a.Email, Status: a.Status}
}

func toTimeSlotResponse(s *model.TimeSlot) *dto.TimeSlotResponse {
	if s == nil {
		return nil
	}
	return &dto.TimeSlotResponse{
		ID:        s.TimeSlotID,
		CycleID:   s.CycleID,
		Date:      formatDate(s.Date),
		StartTime: normalizeClock(s.StartTime),
		EndTime:   normalizeClock(s.EndTime),
	}
}

func toAvailabilitySlot(s *model.TimeSlot) availability.Slot {
	return availability.Slot{
		ID:        s.TimeSlotID,
		Date:      formatDate(s.Date),
		StartTime: normalizeClock(s.StartTime),
		EndTime:   normalizeClock(s.EndTime),
	}
}

func toResearchAreaResponse(a *model.ResearchArea) dto.ResearchAreaResponse {
	return dto.ResearchAreaResponse{
		ID:          a.ResearchAreaID,
		TeamID:      a.TeamID,
		Name:        a.Name,
		Description: a.Description,
	}
}

func toOfficerResponse(o *model.Officer) *dto.OfficerResponse {
	return &dto.OfficerResponse{
		ID:        o.OfficerID,
		Name:      o.Name,
		Email:     o.Email,
		Role:      o.Role,
		Team:      toTeamBrief(o.Team),
		IsActive:  o.IsActive,
		Linked:    o.FirebaseUID != nil && *o.FirebaseUID != "",
		CreatedAt: formatTime(o.CreatedAt),
	}
}

func toInterviewResponse(i *model.Interview) *dto.InterviewResponse {
	return &dto.InterviewResponse{
		ID:          i.InterviewID,
		CycleID:     i.CycleID,
		Application: toApplicantBrief(i.Application),
		Officer:     toOfficerBrief(i.Officer),
		TimeSlot:    toTimeSlotResponse(i.TimeSlot),
		Location:    i.Location,
		Status:      i.Status,
		Version:     i.Version,
		CreatedAt:   formatTime(i.CreatedAt),
	}
}
