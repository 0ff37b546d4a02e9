package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// RecruitmentConfigHandler 纳新配置 HTTP 处理器
type RecruitmentConfigHandler struct {
	configSvc service.RecruitmentConfigService
}

// NewRecruitmentConfigHandler 创建 RecruitmentConfigHandler
func NewRecruitmentConfigHandler(configSvc service.RecruitmentConfigService) *RecruitmentConfigHandler {
	return &RecruitmentConfigHandler{configSvc: configSvc}
}

// GetConfig 获取纳新配置
// GET /api/v1/config
func (h *RecruitmentConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, cfg)
}

// UpdateConfig 更新纳新配置
// PUT /api/v1/config
func (h *RecruitmentConfigHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateRecruitmentConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	cfg, err := h.configSvc.Update(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, cfg)
}
