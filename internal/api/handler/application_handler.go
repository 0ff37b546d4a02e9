package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// multipart 表单头部的余量
const multipartOverhead = 64 << 10

// ApplicationHandler 申请、评审与简历 HTTP 处理器
type ApplicationHandler struct {
	appSvc         service.ApplicationService
	reviewSvc      service.ReviewService
	resumeSvc      service.ResumeService
	maxResumeBytes int64
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(
	appSvc service.ApplicationService,
	reviewSvc service.ReviewService,
	resumeSvc service.ResumeService,
	maxResumeBytes int64,
) *ApplicationHandler {
	if maxResumeBytes <= 0 {
		maxResumeBytes = 5 << 20
	}
	return &ApplicationHandler{
		appSvc:         appSvc,
		reviewSvc:      reviewSvc,
		resumeSvc:      resumeSvc,
		maxResumeBytes: maxResumeBytes,
	}
}

// ════════════════════════ 公开接口 ════════════════════════

// SubmitApplication 提交申请
// POST /api/v1/applications
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appSvc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, result)
}

// LookupStatus 申请人凭邮箱与查询码查看进度
// GET /api/v1/applications/status?email=&code=
func (h *ApplicationHandler) LookupStatus(c *gin.Context) {
	var req dto.ApplicationStatusLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appSvc.LookupStatus(c.Request.Context(), &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, result)
}

// UploadResume 上传简历（multipart: file，申请人需附带 code）
// POST /api/v1/applications/:id/resume
func (h *ApplicationHandler) UploadResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxResumeBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestEntityTooLarge(c, "简历文件过大")
			return
		}
		response.BadRequest(c, 10001, "请上传简历文件")
		return
	}
	defer file.Close()

	access := service.ResumeAccess{
		OfficerID:  OptionalOfficerID(c),
		LookupCode: c.PostForm("code"),
	}

	result, err := h.resumeSvc.Upload(c.Request.Context(), c.Param("id"), access, header.Size, file)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, result)
}

// ════════════════════════ 干事接口 ════════════════════════

// ListApplications 申请列表（分页）
// GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// GetApplication 申请详情
// GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.appSvc.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// UpdateStatus 更新申请状态
// PATCH /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	app, err := h.appSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// AssignTeam 分配小组（team_id 为 null 表示取消）
// PATCH /api/v1/applications/:id/team
func (h *ApplicationHandler) AssignTeam(c *gin.Context) {
	var req dto.UpdateApplicationTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	app, err := h.appSvc.AssignTeam(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// Transfer 批量状态转移
// PUT /api/v1/applications/transfer
func (h *ApplicationHandler) Transfer(c *gin.Context) {
	var req dto.TransferApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	result, err := h.appSvc.Transfer(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 评审 ──

// ListReviews 申请的全部评审
// GET /api/v1/applications/:id/reviews
func (h *ApplicationHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reviews})
}

// UpsertReview 提交或修改自己的评审
// POST /api/v1/applications/:id/reviews
func (h *ApplicationHandler) UpsertReview(c *gin.Context) {
	var req dto.UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	review, err := h.reviewSvc.Upsert(c.Request.Context(), c.Param("id"), callerID, &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, review)
}

// handleApplicationError 统一处理申请、评审、简历业务错误
func (h *ApplicationHandler) handleApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 16001, "申请不存在")
	case errors.Is(err, service.ErrApplicationsClosed):
		response.BadRequest(c, 16002, "当前不在报名时间内")
	case errors.Is(err, service.ErrNoActiveCycle):
		response.BadRequest(c, 16003, "当前没有进行中的纳新周期")
	case errors.Is(err, service.ErrCycleNotFound):
		response.NotFound(c, 16004, "纳新周期不存在")
	case errors.Is(err, service.ErrDuplicateApplication):
		response.Conflict(c, 16005, "该邮箱已在本周期提交过申请")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 16006, "申请状态无效")
	case errors.Is(err, service.ErrInvalidResearchArea):
		response.BadRequest(c, 16007, "研究方向不存在")
	case errors.Is(err, service.ErrLookupFailed):
		response.NotFound(c, 16008, "邮箱或查询码错误")
	case errors.Is(err, service.ErrTransferSameStatus):
		response.BadRequest(c, 16009, "源状态与目标状态相同")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrTeamInactive):
		response.BadRequest(c, 13004, "小组已停用")
	case errors.Is(err, service.ErrResumeNotPDF):
		response.BadRequest(c, 17001, "简历仅支持 PDF 格式")
	case errors.Is(err, service.ErrResumeTooLarge):
		response.RequestEntityTooLarge(c, "简历文件过大")
	case errors.Is(err, service.ErrResumeForbidden):
		response.Forbidden(c, 17003, "无权为该申请上传简历")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, pkgerrors.ErrProviderUnavailable):
		response.ServiceUnavailable(c, "简历存储服务未配置")
	default:
		response.InternalError(c)
	}
}
