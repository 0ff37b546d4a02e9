package dto

// ── 纳新配置 DTO ──

// UpdateRecruitmentConfigRequest 更新纳新配置
type UpdateRecruitmentConfigRequest struct {
	ApplicationsOpen  *bool   `json:"applications_open"`
	MinInterviewers   *int    `json:"min_interviewers"   binding:"omitempty,min=1,max=10"`
	InterviewLocation *string `json:"interview_location" binding:"omitempty,min=1,max=200"`
}

// RecruitmentConfigResponse 纳新配置响应
type RecruitmentConfigResponse struct {
	ApplicationsOpen  bool   `json:"applications_open"`
	MinInterviewers   int    `json:"min_interviewers"`
	InterviewLocation string `json:"interview_location"`
	UpdatedAt         string `json:"updated_at"`
}
