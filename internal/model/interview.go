package model

import "gorm.io/gorm"

// 面试状态
const (
	InterviewScheduled = "scheduled"
	InterviewCompleted = "completed"
	InterviewCancelled = "cancelled"
	InterviewNoShow    = "no_show"
)

// 面试推荐意见
const (
	RecommendStrongYes = "strong_yes"
	RecommendYes       = "yes"
	RecommendNo        = "no"
	RecommendStrongNo  = "strong_no"
)

// Interview 面试表，对应 interviews
type Interview struct {
	InterviewID   string `gorm:"type:uuid;primaryKey"                          json:"interview_id"`
	CycleID       string `gorm:"type:uuid;not null;index"                      json:"cycle_id"`
	ApplicationID string `gorm:"type:uuid;not null;index"                      json:"application_id"`
	OfficerID     string `gorm:"type:uuid;not null;index"                      json:"officer_id"`
	TimeSlotID    string `gorm:"type:uuid;not null"                            json:"time_slot_id"`
	Location      string `gorm:"type:varchar(200)"                             json:"location,omitempty"`
	Status        string `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	VersionedModel

	// 关联
	Application *Application `gorm:"foreignKey:ApplicationID;references:ApplicationID" json:"application,omitempty"`
	Officer     *Officer     `gorm:"foreignKey:OfficerID;references:OfficerID"         json:"officer,omitempty"`
	TimeSlot    *TimeSlot    `gorm:"foreignKey:TimeSlotID;references:TimeSlotID"       json:"time_slot,omitempty"`
}

// TableName 指定表名
func (Interview) TableName() string { return "interviews" }

func (i *Interview) BeforeCreate(*gorm.DB) error {
	ensureID(&i.InterviewID)
	return nil
}

// InterviewNote 面试记录表，对应 interview_notes
type InterviewNote struct {
	NoteID         string `gorm:"type:uuid;primaryKey"       json:"note_id"`
	InterviewID    string `gorm:"type:uuid;not null;index"   json:"interview_id"`
	OfficerID      string `gorm:"type:uuid;not null"         json:"officer_id"`
	Content        string `gorm:"type:text;not null"         json:"content"`
	Rating         int    `gorm:"type:smallint;not null"     json:"rating"`         // 1-5
	Recommendation string `gorm:"type:varchar(20);not null"  json:"recommendation"` // strong_yes | yes | no | strong_no
	SoftDeleteModel

	// 关联
	Officer *Officer `gorm:"foreignKey:OfficerID;references:OfficerID" json:"officer,omitempty"`
}

// TableName 指定表名
func (InterviewNote) TableName() string { return "interview_notes" }

func (n *InterviewNote) BeforeCreate(*gorm.DB) error {
	ensureID(&n.NoteID)
	return nil
}
