package dto

import "github.com/tamu-thinktank/website-sub002/internal/availability"

// ── 可用时间 DTO ──

// OfficerTimesRequest 查询自己的可用时间
type OfficerTimesRequest struct {
	CycleID string `form:"cycle_id" binding:"omitempty,uuid"` // 为空时使用当前周期
}

// SetOfficerTimesRequest 整体替换自己在某周期的可用时间
type SetOfficerTimesRequest struct {
	CycleID     string   `json:"cycle_id"      binding:"omitempty,uuid"`
	TimeSlotIDs []string `json:"time_slot_ids" binding:"omitempty,dive,uuid"`
}

// OfficerTimesResponse 可用时间响应
type OfficerTimesResponse struct {
	CycleID     string   `json:"cycle_id"`
	TimeSlotIDs []string `json:"time_slot_ids"`
}

// AvailabilityRequest 可用性表查询参数
// officer_ids / required_ids 既支持重复参数也支持逗号分隔
type AvailabilityRequest struct {
	CycleID     string   `form:"cycle_id"     json:"cycle_id"             binding:"omitempty,uuid"`
	OfficerIDs  []string `form:"officer_ids"  json:"officer_ids"`
	RequiredIDs []string `form:"required_ids" json:"required_officer_ids"`
	MinOfficers *int     `form:"min_officers" json:"min_officers"         binding:"omitempty,min=0,max=50"`
}

// AvailabilityResponse 可用性表响应
type AvailabilityResponse struct {
	CycleID     string `json:"cycle_id"`
	MinOfficers int    `json:"min_officers"`
	availability.Table
}

// AvailabilityWSMessage WebSocket 服务端推送
type AvailabilityWSMessage struct {
	Seq   uint64                `json:"seq,omitempty"`
	Data  *AvailabilityResponse `json:"data,omitempty"`
	Error string                `json:"error,omitempty"`
}
