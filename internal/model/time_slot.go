package model

import (
	"time"

	"gorm.io/gorm"
)

// TimeSlot 面试时间段表，对应 time_slots（可用性表的行）
type TimeSlot struct {
	TimeSlotID string    `gorm:"type:uuid;primaryKey" json:"time_slot_id"`
	CycleID    string    `gorm:"type:uuid;not null"   json:"cycle_id"`
	Date       time.Time `gorm:"type:date;not null"   json:"date"`
	StartTime  string    `gorm:"type:time;not null"   json:"start_time"` // "HH:MM"
	EndTime    string    `gorm:"type:time;not null"   json:"end_time"`
	VersionedModel

	// 关联
	Cycle *RecruitmentCycle `gorm:"foreignKey:CycleID;references:CycleID" json:"cycle,omitempty"`
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }

func (s *TimeSlot) BeforeCreate(*gorm.DB) error {
	ensureID(&s.TimeSlotID)
	return nil
}

// OfficerTime 干事可用时间表，对应 officer_times（干事勾选的时间段）
type OfficerTime struct {
	OfficerTimeID string    `gorm:"type:uuid;primaryKey"               json:"officer_time_id"`
	OfficerID     string    `gorm:"type:uuid;not null;uniqueIndex:uq_officer_time" json:"officer_id"`
	TimeSlotID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_officer_time;index" json:"time_slot_id"`
	CycleID       string    `gorm:"type:uuid;not null;index"           json:"cycle_id"` // 冗余，便于按周期整体替换
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Officer  *Officer  `gorm:"foreignKey:OfficerID;references:OfficerID"   json:"officer,omitempty"`
	TimeSlot *TimeSlot `gorm:"foreignKey:TimeSlotID;references:TimeSlotID" json:"time_slot,omitempty"`
}

// TableName 指定表名
func (OfficerTime) TableName() string { return "officer_times" }

func (o *OfficerTime) BeforeCreate(*gorm.DB) error {
	ensureID(&o.OfficerTimeID)
	return nil
}
