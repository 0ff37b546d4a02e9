package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// TeamHandler 小组与研究方向 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
	areaSvc service.ResearchAreaService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService, areaSvc service.ResearchAreaService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc, areaSvc: areaSvc}
}

// ListTeams 小组列表（公开，申请表单使用）
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	var req dto.TeamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teams, err := h.teamSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": teams})
}

// GetTeam 小组详情
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// CreateTeam 创建小组
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// UpdateTeam 更新小组
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeleteTeam 删除小组
// DELETE /api/v1/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.teamSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 研究方向 ──

// ListResearchAreas 研究方向列表（公开）
// GET /api/v1/research-areas?team_id=
func (h *TeamHandler) ListResearchAreas(c *gin.Context) {
	var req dto.ResearchAreaListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	areas, err := h.areaSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": areas})
}

// CreateResearchArea 创建研究方向
// POST /api/v1/research-areas
func (h *TeamHandler) CreateResearchArea(c *gin.Context) {
	var req dto.CreateResearchAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	area, err := h.areaSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, area)
}

// UpdateResearchArea 更新研究方向
// PUT /api/v1/research-areas/:id
func (h *TeamHandler) UpdateResearchArea(c *gin.Context) {
	var req dto.UpdateResearchAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	area, err := h.areaSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, area)
}

// DeleteResearchArea 删除研究方向
// DELETE /api/v1/research-areas/:id
func (h *TeamHandler) DeleteResearchArea(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.areaSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTeamError 统一处理小组与研究方向业务错误
func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrTeamNameExists):
		response.Conflict(c, 13002, "小组名称已存在")
	case errors.Is(err, service.ErrTeamHasAssigned):
		response.Conflict(c, 13003, "小组下存在已分配的申请人，无法删除")
	case errors.Is(err, service.ErrTeamInactive):
		response.BadRequest(c, 13004, "小组已停用")
	case errors.Is(err, service.ErrResearchAreaNotFound):
		response.NotFound(c, 13011, "研究方向不存在")
	case errors.Is(err, service.ErrResearchAreaNameExists):
		response.Conflict(c, 13012, "该小组下已存在同名研究方向")
	default:
		response.InternalError(c)
	}
}
