package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportApplications 导出申请 Excel
// GET /api/v1/export/applications?cycle_id=xxx
func (h *ExportHandler) ExportApplications(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportApplications(c.Request.Context(), req.CycleID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportInterviewCalendar 导出自己的面试日历
// GET /api/v1/export/interviews.ics?cycle_id=xxx
func (h *ExportHandler) ExportInterviewCalendar(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	officerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportInterviewCalendar(c.Request.Context(), req.CycleID, officerID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, icsContentType, data)
}

// writeAttachment 设置下载响应头
func writeAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCycleNotFound):
		response.NotFound(c, 20001, "纳新周期不存在")
	case errors.Is(err, service.ErrNoActiveCycle):
		response.NotFound(c, 20002, "当前没有进行中的纳新周期")
	default:
		response.InternalError(c)
	}
}
