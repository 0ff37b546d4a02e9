package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// InterviewHandler 面试与面试记录 HTTP 处理器
type InterviewHandler struct {
	interviewSvc service.InterviewService
}

// NewInterviewHandler 创建 InterviewHandler
func NewInterviewHandler(interviewSvc service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewSvc: interviewSvc}
}

// ListInterviews 面试列表（mine=true 只看自己）
// GET /api/v1/interviews
func (h *InterviewHandler) ListInterviews(c *gin.Context) {
	var req dto.InterviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	list, err := h.interviewSvc.List(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetInterview 面试详情
// GET /api/v1/interviews/:id
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	iv, err := h.interviewSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.OK(c, iv)
}

// Match 手动匹配面试
// POST /api/v1/interviews/match
func (h *InterviewHandler) Match(c *gin.Context) {
	var req dto.MatchInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	iv, err := h.interviewSvc.Match(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.Created(c, iv)
}

// Candidates 候选面试时间段
// GET /api/v1/interviews/candidates?application_id=
func (h *InterviewHandler) Candidates(c *gin.Context) {
	var req dto.CandidatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.interviewSvc.Candidates(c.Request.Context(), req.ApplicationID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// UpdateStatus 变更面试状态
// PATCH /api/v1/interviews/:id/status
func (h *InterviewHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateInterviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	iv, err := h.interviewSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.OK(c, iv)
}

// ListNotes 面试记录列表
// GET /api/v1/interviews/:id/notes
func (h *InterviewHandler) ListNotes(c *gin.Context) {
	notes, err := h.interviewSvc.ListNotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": notes})
}

// AddNote 添加面试记录
// POST /api/v1/interviews/:id/notes
func (h *InterviewHandler) AddNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	note, err := h.interviewSvc.AddNote(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleInterviewError(c, err)
		return
	}

	response.Created(c, note)
}

// handleInterviewError 统一处理面试模块业务错误
func (h *InterviewHandler) handleInterviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		response.NotFound(c, 18001, "面试不存在")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 16001, "申请不存在")
	case errors.Is(err, service.ErrOfficerNotFound):
		response.NotFound(c, 12001, "干事不存在")
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, 15001, "时间段不存在")
	case errors.Is(err, service.ErrOfficerInactive):
		response.BadRequest(c, 18002, "干事已停用")
	case errors.Is(err, service.ErrOfficerUnavailable):
		response.BadRequest(c, 18003, "该干事未勾选此时间段")
	case errors.Is(err, service.ErrOfficerBusy):
		response.BadRequest(c, 18004, "该干事在此时间段已有面试")
	case errors.Is(err, service.ErrApplicantBusy):
		response.BadRequest(c, 18005, "申请人在此时间段已有面试")
	case errors.Is(err, service.ErrSlotCycleMismatch):
		response.BadRequest(c, 18006, "时间段与申请不属于同一纳新周期")
	case errors.Is(err, service.ErrApplicationFinalized):
		response.BadRequest(c, 18007, "申请已有最终结果，无法安排面试")
	case errors.Is(err, service.ErrInterviewStatusTransition):
		response.BadRequest(c, 18008, "只有待进行的面试可以变更状态")
	case errors.Is(err, service.ErrInterviewCancelled):
		response.BadRequest(c, 18009, "面试已取消")
	case errors.Is(err, service.ErrInterviewForbidden):
		response.Forbidden(c, 18010, "只能修改自己负责的面试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
