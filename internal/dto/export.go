package dto

// ExportRequest 导出参数
type ExportRequest struct {
	CycleID string `form:"cycle_id" binding:"omitempty,uuid"` // 为空时使用当前周期
}
