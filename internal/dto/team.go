package dto

// ── 小组模块 DTO ──

// CreateTeamRequest 创建小组请求
type CreateTeamRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateTeamRequest 更新小组请求
type UpdateTeamRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=50"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// TeamListRequest 小组列表查询参数
type TeamListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// TeamResponse 小组信息响应
type TeamResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	IsActive      bool                   `json:"is_active"`
	ResearchAreas []ResearchAreaResponse `json:"research_areas"`
	AssignedCount int64                  `json:"assigned_count"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

// ── 研究方向 DTO ──

// CreateResearchAreaRequest 创建研究方向请求
type CreateResearchAreaRequest struct {
	TeamID      string `json:"team_id"     binding:"required,uuid"`
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateResearchAreaRequest 更新研究方向请求
type UpdateResearchAreaRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ResearchAreaListRequest 研究方向列表查询参数
type ResearchAreaListRequest struct {
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// ResearchAreaResponse 研究方向响应
type ResearchAreaResponse struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
