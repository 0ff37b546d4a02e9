package dto

// ── 申请模块 DTO ──

// SubmitApplicationRequest 提交申请（公开接口）
type SubmitApplicationRequest struct {
	Name            string   `json:"name"              binding:"required,min=1,max=100"`
	Email           string   `json:"email"             binding:"required,email,max=255"`
	UIN             string   `json:"uin"               binding:"required,numeric,len=9"`
	Phone           string   `json:"phone"             binding:"omitempty,max=30"`
	Major           string   `json:"major"             binding:"required,min=1,max=100"`
	GradYear        int      `json:"grad_year"         binding:"required,min=2000,max=2100"`
	Statement       string   `json:"statement"         binding:"required,min=1,max=5000"`
	PreferredTeamID *string  `json:"preferred_team_id" binding:"omitempty,uuid"`
	ResearchAreaIDs []string `json:"research_area_ids" binding:"omitempty,max=5,dive,uuid"`
}

// SubmitApplicationResponse 提交成功响应
// LookupCode 只在此处返回一次，服务端仅保存其哈希
type SubmitApplicationResponse struct {
	ApplicationID string `json:"application_id"`
	LookupCode    string `json:"lookup_code"`
	Status        string `json:"status"`
}

// ApplicationStatusLookupRequest 申请人查询状态
type ApplicationStatusLookupRequest struct {
	Email string `form:"email" binding:"required,email"`
	Code  string `form:"code"  binding:"required,min=6,max=32"`
}

// ApplicationStatusLookupResponse 申请人可见的状态信息
type ApplicationStatusLookupResponse struct {
	ApplicationID string             `json:"application_id"`
	Name          string             `json:"name"`
	Status        string             `json:"status"`
	CycleName     string             `json:"cycle_name"`
	HasResume     bool               `json:"has_resume"`
	Interviews    []InterviewSummary `json:"interviews"`
	SubmittedAt   string             `json:"submitted_at"`
}

// InterviewSummary 申请人可见的面试安排
type InterviewSummary struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

// ApplicationListRequest 申请列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	CycleID string `form:"cycle_id" binding:"omitempty,uuid"`
	Status  string `form:"status"   binding:"omitempty,oneof=submitted reviewing interviewing accepted rejected waitlisted"`
	TeamID  string `form:"team_id"  binding:"omitempty,uuid"` // 匹配意向小组或已分配小组
	Keyword string `form:"keyword"  binding:"omitempty,max=50"`
}

// ApplicationResponse 申请列表项
type ApplicationResponse struct {
	ID            string     `json:"id"`
	CycleID       string     `json:"cycle_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	UIN           string     `json:"uin"`
	Major         string     `json:"major"`
	GradYear      int        `json:"grad_year"`
	Status        string     `json:"status"`
	PreferredTeam *TeamBrief `json:"preferred_team,omitempty"`
	AssignedTeam  *TeamBrief `json:"assigned_team,omitempty"`
	ScoreAvg      *float64   `json:"score_avg"`
	ReviewCount   int        `json:"review_count"`
	HasResume     bool       `json:"has_resume"`
	Version       int        `json:"version"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// ApplicationDetailResponse 申请详情
type ApplicationDetailResponse struct {
	ApplicationResponse
	Phone         string                 `json:"phone,omitempty"`
	Statement     string                 `json:"statement"`
	ResumeFileID  string                 `json:"resume_file_id,omitempty"`
	ResumeURL     string                 `json:"resume_url,omitempty"`
	ResearchAreas []ResearchAreaResponse `json:"research_areas"`
	Reviews       []ReviewResponse       `json:"reviews"`
	Interviews    []InterviewResponse    `json:"interviews"`
}

// UpdateApplicationStatusRequest 更新申请状态
// Version 非零时启用乐观锁校验
type UpdateApplicationStatusRequest struct {
	Status  string `json:"status"  binding:"required,oneof=submitted reviewing interviewing accepted rejected waitlisted"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// UpdateApplicationTeamRequest 分配小组（team_id 为 null 表示取消分配）
type UpdateApplicationTeamRequest struct {
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
	Version int     `json:"version" binding:"omitempty,min=1"`
}

// TransferApplicationsRequest 批量状态转移
type TransferApplicationsRequest struct {
	CycleID        string   `json:"cycle_id"        binding:"required,uuid"`
	FromStatus     string   `json:"from_status"     binding:"required,oneof=submitted reviewing interviewing accepted rejected waitlisted"`
	ToStatus       string   `json:"to_status"       binding:"required,oneof=submitted reviewing interviewing accepted rejected waitlisted"`
	ApplicationIDs []string `json:"application_ids" binding:"omitempty,dive,uuid"`
}

// TransferApplicationsResponse 批量状态转移结果
type TransferApplicationsResponse struct {
	Moved int64 `json:"moved"`
}

// ResumeUploadResponse 简历上传结果
type ResumeUploadResponse struct {
	FileID string `json:"file_id"`
	Link   string `json:"link"`
}

// ── 评审 DTO ──

// UpsertReviewRequest 提交或修改评审（每位干事对每份申请一条）
type UpsertReviewRequest struct {
	Score   int    `json:"score"   binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// ReviewResponse 评审响应
type ReviewResponse struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"application_id"`
	Officer       *OfficerBrief `json:"officer,omitempty"`
	Score         int           `json:"score"`
	Comment       string        `json:"comment,omitempty"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}
