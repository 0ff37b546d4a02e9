package dto

// ── 面试时间段 DTO ──

// CreateTimeSlotRequest 创建单个时间段
type CreateTimeSlotRequest struct {
	CycleID   string `json:"cycle_id"   binding:"required,uuid"`
	Date      string `json:"date"       binding:"required"` // "2026-09-01"
	StartTime string `json:"start_time" binding:"required"` // "10:00"
	EndTime   string `json:"end_time"   binding:"required"` // "10:30"
}

// UpdateTimeSlotRequest 更新时间段
type UpdateTimeSlotRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// GenerateTimeSlotsRequest 按日期范围批量生成固定时长的时间段
type GenerateTimeSlotsRequest struct {
	CycleID     string `json:"cycle_id"     binding:"required,uuid"`
	StartDate   string `json:"start_date"   binding:"required"`
	EndDate     string `json:"end_date"     binding:"required"`
	DayStart    string `json:"day_start"    binding:"required"` // 每天开始 "09:00"
	DayEnd      string `json:"day_end"      binding:"required"` // 每天结束 "17:00"
	SlotMinutes int    `json:"slot_minutes" binding:"required,min=10,max=240"`
	// Weekdays 仅在这些星期生成（0=周日 … 6=周六），为空表示每天
	Weekdays []int `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
}

// GenerateTimeSlotsResponse 批量生成结果
type GenerateTimeSlotsResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"` // 已存在而跳过的数量
}

// TimeSlotListRequest 时间段列表查询参数
type TimeSlotListRequest struct {
	CycleID string `form:"cycle_id" binding:"omitempty,uuid"`
	Date    string `form:"date"`
}

// TimeSlotResponse 时间段响应
type TimeSlotResponse struct {
	ID        string `json:"id"`
	CycleID   string `json:"cycle_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
