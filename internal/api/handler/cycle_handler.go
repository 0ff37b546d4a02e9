package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// CycleHandler 纳新周期 HTTP 处理器
type CycleHandler struct {
	cycleSvc service.CycleService
}

// NewCycleHandler 创建 CycleHandler
func NewCycleHandler(cycleSvc service.CycleService) *CycleHandler {
	return &CycleHandler{cycleSvc: cycleSvc}
}

// ListCycles 周期列表
// GET /api/v1/cycles
func (h *CycleHandler) ListCycles(c *gin.Context) {
	cycles, err := h.cycleSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": cycles})
}

// GetActiveCycle 当前周期（公开）
// GET /api/v1/cycles/active
func (h *CycleHandler) GetActiveCycle(c *gin.Context) {
	cycle, err := h.cycleSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, cycle)
}

// GetCycle 周期详情
// GET /api/v1/cycles/:id
func (h *CycleHandler) GetCycle(c *gin.Context) {
	cycle, err := h.cycleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, cycle)
}

// CreateCycle 创建周期
// POST /api/v1/cycles
func (h *CycleHandler) CreateCycle(c *gin.Context) {
	var req dto.CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	cycle, err := h.cycleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.Created(c, cycle)
}

// UpdateCycle 更新周期
// PUT /api/v1/cycles/:id
func (h *CycleHandler) UpdateCycle(c *gin.Context) {
	var req dto.UpdateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	cycle, err := h.cycleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, cycle)
}

// ActivateCycle 设为当前周期
// PUT /api/v1/cycles/:id/activate
func (h *CycleHandler) ActivateCycle(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.cycleSvc.Activate(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteCycle 删除周期
// DELETE /api/v1/cycles/:id
func (h *CycleHandler) DeleteCycle(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.cycleSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCycleError 统一处理周期模块业务错误
func (h *CycleHandler) handleCycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCycleNotFound):
		response.NotFound(c, 14001, "纳新周期不存在")
	case errors.Is(err, service.ErrNoActiveCycle):
		response.NotFound(c, 14002, "当前没有进行中的纳新周期")
	case errors.Is(err, service.ErrCycleDateInvalid):
		response.BadRequest(c, 14003, "周期结束日期不能早于开始日期")
	case errors.Is(err, service.ErrCycleActiveDelete):
		response.Conflict(c, 14004, "不能删除进行中的纳新周期")
	default:
		response.InternalError(c)
	}
}
