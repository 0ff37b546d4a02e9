package dto

// ── 干事模块 DTO ──

// CreateOfficerRequest 管理员按邮箱录入干事
type CreateOfficerRequest struct {
	Name   string  `json:"name"    binding:"required,min=1,max=100"`
	Email  string  `json:"email"   binding:"required,email"`
	Role   string  `json:"role"    binding:"omitempty,oneof=admin officer"`
	TeamID *string `json:"team_id" binding:"omitempty,uuid"`
}

// UpdateOfficerRequest 更新干事（TeamID 传空字符串表示移出小组）
type UpdateOfficerRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Role     *string `json:"role"      binding:"omitempty,oneof=admin officer"`
	TeamID   *string `json:"team_id"`
	IsActive *bool   `json:"is_active"`
}

// OfficerListRequest 干事列表查询参数
type OfficerListRequest struct {
	PaginationRequest
	Role            string `form:"role"    binding:"omitempty,oneof=admin officer"`
	TeamID          string `form:"team_id" binding:"omitempty,uuid"`
	Keyword         string `form:"keyword" binding:"omitempty,max=50"`
	IncludeInactive bool   `form:"include_inactive"`
}

// OfficerResponse 干事信息响应
type OfficerResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Team      *TeamBrief `json:"team,omitempty"`
	IsActive  bool       `json:"is_active"`
	Linked    bool       `json:"linked"` // 是否已绑定 Firebase 账号
	CreatedAt string     `json:"created_at"`
}

// ImportOfficerResponse 批量导入干事响应
type ImportOfficerResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []ImportOfficerError `json:"errors,omitempty"`
}

// ImportOfficerError 导入错误详情
type ImportOfficerError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
