package dto

// ── 认证模块 DTO ──

// SessionRequest 用 Firebase ID Token 换取本系统 Access Token
type SessionRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// TokenResponse Token 响应
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"` // Access Token 有效期（秒）
	Officer     OfficerResponse `json:"officer"`
}
