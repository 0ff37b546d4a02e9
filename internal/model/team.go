package model

import "gorm.io/gorm"

// Team 小组表，对应 teams
type Team struct {
	TeamID      string `gorm:"type:uuid;primaryKey"      json:"team_id"`
	Name        string `gorm:"type:varchar(50);not null" json:"name"`
	Description string `gorm:"type:text"                 json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"     json:"is_active"`
	VersionedModel

	// 关联
	ResearchAreas []ResearchArea `gorm:"foreignKey:TeamID;references:TeamID" json:"research_areas,omitempty"`
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

func (t *Team) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TeamID)
	return nil
}

// ResearchArea 研究方向表，对应 research_areas（隶属小组）
type ResearchArea struct {
	ResearchAreaID string `gorm:"type:uuid;primaryKey"       json:"research_area_id"`
	TeamID         string `gorm:"type:uuid;not null"         json:"team_id"`
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	Description    string `gorm:"type:text"                  json:"description,omitempty"`
	SoftDeleteModel

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (ResearchArea) TableName() string { return "research_areas" }

func (r *ResearchArea) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ResearchAreaID)
	return nil
}
