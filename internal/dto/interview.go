package dto

// ── 面试模块 DTO ──

// InterviewListRequest 面试列表查询参数
type InterviewListRequest struct {
	CycleID       string `form:"cycle_id"       binding:"omitempty,uuid"`
	OfficerID     string `form:"officer_id"     binding:"omitempty,uuid"`
	ApplicationID string `form:"application_id" binding:"omitempty,uuid"`
	Status        string `form:"status"         binding:"omitempty,oneof=scheduled completed cancelled no_show"`
	Mine          bool   `form:"mine"` // 仅查看自己的面试
}

// InterviewResponse 面试信息响应
type InterviewResponse struct {
	ID          string            `json:"id"`
	CycleID     string            `json:"cycle_id"`
	Application *ApplicantBrief   `json:"application,omitempty"`
	Officer     *OfficerBrief     `json:"officer,omitempty"`
	TimeSlot    *TimeSlotResponse `json:"time_slot,omitempty"`
	Location    string            `json:"location"`
	Status      string            `json:"status"`
	Version     int               `json:"version"`
	CreatedAt   string            `json:"created_at"`
}

// MatchInterviewRequest 手动匹配面试
type MatchInterviewRequest struct {
	ApplicationID string `json:"application_id" binding:"required,uuid"`
	OfficerID     string `json:"officer_id"     binding:"required,uuid"`
	TimeSlotID    string `json:"time_slot_id"   binding:"required,uuid"`
	Location      string `json:"location"       binding:"omitempty,max=200"`
}

// CandidatesRequest 查询候选面试时间
type CandidatesRequest struct {
	ApplicationID string `form:"application_id" binding:"required,uuid"`
}

// CandidateSlotResponse 一个候选时间段及其空闲干事
type CandidateSlotResponse struct {
	TimeSlot TimeSlotResponse `json:"time_slot"`
	Officers []OfficerBrief   `json:"officers"`
}

// UpdateInterviewStatusRequest 更新面试状态
type UpdateInterviewStatusRequest struct {
	Status  string `json:"status"  binding:"required,oneof=completed cancelled no_show"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// ── 面试记录 DTO ──

// CreateNoteRequest 添加面试记录
type CreateNoteRequest struct {
	Content        string `json:"content"        binding:"required,min=1,max=5000"`
	Rating         int    `json:"rating"         binding:"required,min=1,max=5"`
	Recommendation string `json:"recommendation" binding:"required,oneof=strong_yes yes no strong_no"`
}

// NoteResponse 面试记录响应
type NoteResponse struct {
	ID             string        `json:"id"`
	InterviewID    string        `json:"interview_id"`
	Officer        *OfficerBrief `json:"officer,omitempty"`
	Content        string        `json:"content"`
	Rating         int           `json:"rating"`
	Recommendation string        `json:"recommendation"`
	CreatedAt      string        `json:"created_at"`
}
