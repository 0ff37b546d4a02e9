package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// TimeSlotHandler 面试时间段 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// ListTimeSlots 获取时间段列表
// GET /api/v1/time-slots
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	var req dto.TimeSlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.timeSlotSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// GetTimeSlot 获取时间段详情
// GET /api/v1/time-slots/:id
func (h *TimeSlotHandler) GetTimeSlot(c *gin.Context) {
	slot, err := h.timeSlotSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// CreateTimeSlot 创建时间段
// POST /api/v1/time-slots
func (h *TimeSlotHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	slot, err := h.timeSlotSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// GenerateTimeSlots 按日期范围批量生成
// POST /api/v1/time-slots/generate
func (h *TimeSlotHandler) GenerateTimeSlots(c *gin.Context) {
	var req dto.GenerateTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	result, err := h.timeSlotSvc.Generate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateTimeSlot 更新时间段
// PUT /api/v1/time-slots/:id
func (h *TimeSlotHandler) UpdateTimeSlot(c *gin.Context) {
	var req dto.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	slot, err := h.timeSlotSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteTimeSlot 删除时间段
// DELETE /api/v1/time-slots/:id
func (h *TimeSlotHandler) DeleteTimeSlot(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.timeSlotSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTimeSlotError 统一处理时间段模块业务错误
func (h *TimeSlotHandler) handleTimeSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, 15001, "时间段不存在")
	case errors.Is(err, service.ErrCycleNotFound):
		response.BadRequest(c, 15002, "关联的纳新周期不存在")
	case errors.Is(err, service.ErrNoActiveCycle):
		response.BadRequest(c, 15003, "当前没有进行中的纳新周期")
	case errors.Is(err, service.ErrTimeSlotInvalid):
		response.BadRequest(c, 15004, "时间格式无效或开始时间不早于结束时间")
	case errors.Is(err, service.ErrTimeSlotOutOfCycle):
		response.BadRequest(c, 15005, "时间段日期不在纳新周期范围内")
	case errors.Is(err, service.ErrTimeSlotRangeTooLarge):
		response.BadRequest(c, 15006, "批量生成的日期范围过大")
	case errors.Is(err, service.ErrTimeSlotDuplicate):
		response.Conflict(c, 15007, "该日期已存在相同开始时间的时间段")
	case errors.Is(err, service.ErrTimeSlotInUse):
		response.Conflict(c, 15008, "时间段已安排面试，无法删除")
	default:
		response.InternalError(c)
	}
}
