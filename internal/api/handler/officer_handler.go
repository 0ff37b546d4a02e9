package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// OfficerHandler 干事模块 HTTP 处理器
type OfficerHandler struct {
	officerSvc service.OfficerService
}

// NewOfficerHandler 创建 OfficerHandler
func NewOfficerHandler(officerSvc service.OfficerService) *OfficerHandler {
	return &OfficerHandler{officerSvc: officerSvc}
}

// ListOfficers 干事列表（分页）
// GET /api/v1/officers
func (h *OfficerHandler) ListOfficers(c *gin.Context) {
	var req dto.OfficerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	officers, total, err := h.officerSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, officers, total, req.GetPage(), req.GetPageSize())
}

// GetOfficer 干事详情
// GET /api/v1/officers/:id
func (h *OfficerHandler) GetOfficer(c *gin.Context) {
	officer, err := h.officerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOfficerError(c, err)
		return
	}

	response.OK(c, officer)
}

// CreateOfficer 按邮箱录入干事
// POST /api/v1/officers
func (h *OfficerHandler) CreateOfficer(c *gin.Context) {
	var req dto.CreateOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	officer, err := h.officerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOfficerError(c, err)
		return
	}

	response.Created(c, officer)
}

// UpdateOfficer 修改干事信息、角色、小组
// PUT /api/v1/officers/:id
func (h *OfficerHandler) UpdateOfficer(c *gin.Context) {
	var req dto.UpdateOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	officer, err := h.officerSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOfficerError(c, err)
		return
	}

	response.OK(c, officer)
}

// DeleteOfficer 删除干事
// DELETE /api/v1/officers/:id
func (h *OfficerHandler) DeleteOfficer(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	if err := h.officerSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleOfficerError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportOfficers Excel 批量录入干事
// POST /api/v1/officers/import  (multipart: file)
func (h *OfficerHandler) ImportOfficers(c *gin.Context) {
	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	rows, err := h.officerSvc.ParseImportFile(file)
	if err != nil {
		h.handleOfficerError(c, err)
		return
	}

	result, err := h.officerSvc.ImportOfficers(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleOfficerError(c, err)
		return
	}

	response.OK(c, result)
}

// handleOfficerError 统一处理干事模块业务错误
func (h *OfficerHandler) handleOfficerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOfficerNotFound):
		response.NotFound(c, 12001, "干事不存在")
	case errors.Is(err, service.ErrOfficerEmailExists):
		response.Conflict(c, 12002, "该邮箱已录入")
	case errors.Is(err, service.ErrOfficerSelfDelete):
		response.BadRequest(c, 12003, "不能删除自己")
	case errors.Is(err, service.ErrOfficerSelfDemote):
		response.BadRequest(c, 12004, "不能修改自己的角色或停用自己")
	case errors.Is(err, service.ErrTeamNotFound):
		response.BadRequest(c, 12005, "小组不存在")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 12006, err.Error())
	default:
		response.InternalError(c)
	}
}
