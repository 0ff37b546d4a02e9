package model

import (
	"time"

	"gorm.io/gorm"
)

// RecruitmentCycle 纳新周期表，对应 recruitment_cycles
type RecruitmentCycle struct {
	CycleID  string    `gorm:"type:uuid;primaryKey"       json:"cycle_id"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	StartsOn time.Time `gorm:"type:date;not null"         json:"starts_on"`
	EndsOn   time.Time `gorm:"type:date;not null"         json:"ends_on"`
	IsActive bool      `gorm:"not null;default:false"     json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (RecruitmentCycle) TableName() string { return "recruitment_cycles" }

func (c *RecruitmentCycle) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CycleID)
	return nil
}
