package dto

// ── 纳新周期 DTO ──

// CreateCycleRequest 创建纳新周期请求
type CreateCycleRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=100"`
	StartsOn string `json:"starts_on" binding:"required"` // "2026-09-01"
	EndsOn   string `json:"ends_on"   binding:"required"`
}

// UpdateCycleRequest 更新纳新周期请求
type UpdateCycleRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	StartsOn *string `json:"starts_on"`
	EndsOn   *string `json:"ends_on"`
}

// CycleResponse 纳新周期响应
type CycleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartsOn  string `json:"starts_on"`
	EndsOn    string `json:"ends_on"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
