package handler

import (
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/config"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Officer      *OfficerHandler
	Team         *TeamHandler
	Cycle        *CycleHandler
	TimeSlot     *TimeSlotHandler
	Config       *RecruitmentConfigHandler
	Application  *ApplicationHandler
	Interview    *InterviewHandler
	Availability *AvailabilityHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Officer:      NewOfficerHandler(svc.Officer),
		Team:         NewTeamHandler(svc.Team, svc.ResearchArea),
		Cycle:        NewCycleHandler(svc.Cycle),
		TimeSlot:     NewTimeSlotHandler(svc.TimeSlot),
		Config:       NewRecruitmentConfigHandler(svc.Config),
		Application:  NewApplicationHandler(svc.Application, svc.Review, svc.Resume, cfg.Storage.MaxResumeBytes),
		Interview:    NewInterviewHandler(svc.Interview),
		Availability: NewAvailabilityHandler(svc.Availability, cfg.Server.CORS.AllowOrigins, m, logger),
		Export:       NewExportHandler(svc.Export),
	}
}
