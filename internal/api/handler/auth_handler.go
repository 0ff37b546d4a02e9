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

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// CreateSession 用 Firebase ID Token 登录
// POST /api/v1/auth/session
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// GetCurrentOfficer 获取当前登录干事
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentOfficer(c *gin.Context) {
	officerID, ok := MustGetOfficerID(c)
	if !ok {
		return
	}

	officer, err := h.authSvc.Me(c.Request.Context(), officerID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, officer)
}

// Logout 登出：当前 Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp, ok := GetTokenMeta(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIDToken):
		response.Error(c, http.StatusUnauthorized, 11001, "身份令牌无效或已过期")
	case errors.Is(err, service.ErrEmailNotVerified):
		response.Forbidden(c, 11002, "邮箱尚未验证")
	case errors.Is(err, service.ErrOfficerNotProvisioned):
		response.Forbidden(c, 11003, "账号未被录入，请联系管理员")
	case errors.Is(err, service.ErrOfficerInactive):
		response.Forbidden(c, 11004, "账号已停用")
	case errors.Is(err, service.ErrAccountAlreadyLinked):
		response.Conflict(c, 11005, "该邮箱已绑定其他登录账号")
	case errors.Is(err, service.ErrOfficerNotFound):
		response.NotFound(c, 12001, "干事不存在")
	case errors.Is(err, pkgerrors.ErrProviderUnavailable):
		response.ServiceUnavailable(c, "身份认证服务未配置")
	default:
		response.InternalError(c)
	}
}
