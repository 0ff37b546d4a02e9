package model

import (
	"time"

	"gorm.io/gorm"
)

// 申请状态
const (
	StatusSubmitted    = "submitted"
	StatusReviewing    = "reviewing"
	StatusInterviewing = "interviewing"
	StatusAccepted     = "accepted"
	StatusRejected     = "rejected"
	StatusWaitlisted   = "waitlisted"
)

// ApplicationStatuses 全部合法申请状态
var ApplicationStatuses = []string{
	StatusSubmitted, StatusReviewing, StatusInterviewing,
	StatusAccepted, StatusRejected, StatusWaitlisted,
}

// IsValidApplicationStatus 校验状态枚举
func IsValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Application 申请表，对应 applications
type Application struct {
	ApplicationID   string     `gorm:"type:uuid;primaryKey"                          json:"application_id"`
	CycleID         string     `gorm:"type:uuid;not null;index"                      json:"cycle_id"`
	Name            string     `gorm:"type:varchar(100);not null"                    json:"name"`
	Email           string     `gorm:"type:varchar(255);not null"                    json:"email"`
	UIN             string     `gorm:"type:varchar(20);not null"                     json:"uin"` // 学号
	Phone           string     `gorm:"type:varchar(30)"                              json:"phone,omitempty"`
	Major           string     `gorm:"type:varchar(100);not null"                    json:"major"`
	GradYear        int        `gorm:"type:smallint;not null"                        json:"grad_year"`
	Statement       string     `gorm:"type:text;not null"                            json:"statement"`
	Status          string     `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`
	PreferredTeamID *string    `gorm:"type:uuid"                                     json:"preferred_team_id,omitempty"`
	AssignedTeamID  *string    `gorm:"type:uuid"                                     json:"assigned_team_id,omitempty"`
	ResumeFileID    string     `gorm:"type:varchar(255)"                             json:"resume_file_id,omitempty"`
	ResumeURL       string     `gorm:"type:varchar(1024)"                            json:"resume_url,omitempty"`
	ResumeUploaded  *time.Time `json:"resume_uploaded_at,omitempty"`
	LookupCodeHash  string     `gorm:"type:varchar(100);not null"                    json:"-"`
	ScoreAvg        *float64   `gorm:"type:numeric(3,2)"                             json:"score_avg,omitempty"` // 冗余派生：评审均分
	ReviewCount     int        `gorm:"not null;default:0"                            json:"review_count"`
	VersionedModel

	// 关联
	Cycle         *RecruitmentCycle   `gorm:"foreignKey:CycleID;references:CycleID"                                     json:"cycle,omitempty"`
	PreferredTeam *Team               `gorm:"foreignKey:PreferredTeamID;references:TeamID"                              json:"preferred_team,omitempty"`
	AssignedTeam  *Team               `gorm:"foreignKey:AssignedTeamID;references:TeamID"                               json:"assigned_team,omitempty"`
	ResearchAreas []ResearchArea      `gorm:"many2many:application_research_areas;joinForeignKey:ApplicationID;joinReferences:ResearchAreaID" json:"research_areas,omitempty"`
	Reviews       []ApplicationReview `gorm:"foreignKey:ApplicationID;references:ApplicationID"                         json:"reviews,omitempty"`
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }

func (a *Application) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ApplicationID)
	return nil
}

// ApplicationResearchArea 申请-研究方向关联表，对应 application_research_areas
type ApplicationResearchArea struct {
	ApplicationID  string `gorm:"type:uuid;primaryKey" json:"application_id"`
	ResearchAreaID string `gorm:"type:uuid;primaryKey" json:"research_area_id"`
}

// TableName 指定表名
func (ApplicationResearchArea) TableName() string { return "application_research_areas" }

// ApplicationReview 申请评审表，对应 application_reviews（每位干事对每份申请一条）
type ApplicationReview struct {
	ReviewID      string `gorm:"type:uuid;primaryKey"  json:"review_id"`
	ApplicationID string `gorm:"type:uuid;not null;uniqueIndex:uq_review_application_officer" json:"application_id"`
	OfficerID     string `gorm:"type:uuid;not null;uniqueIndex:uq_review_application_officer" json:"officer_id"`
	Score         int    `gorm:"type:smallint;not null"                                       json:"score"` // 1-5
	Comment       string `gorm:"type:text"                                                    json:"comment,omitempty"`
	BaseModel

	// 关联
	Officer *Officer `gorm:"foreignKey:OfficerID;references:OfficerID" json:"officer,omitempty"`
}

// TableName 指定表名
func (ApplicationReview) TableName() string { return "application_reviews" }

func (r *ApplicationReview) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ReviewID)
	return nil
}
