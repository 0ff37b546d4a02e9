package model

// RecruitmentConfig 纳新配置表，对应 recruitment_config（单行强类型）
type RecruitmentConfig struct {
	Singleton         bool   `gorm:"primaryKey;default:true"                       json:"-"`
	ApplicationsOpen  bool   `gorm:"not null;default:true"                         json:"applications_open"`
	MinInterviewers   int    `gorm:"not null;default:2"                            json:"min_interviewers"`
	InterviewLocation string `gorm:"type:varchar(200);not null;default:'Zachry 420'" json:"interview_location"`
	BaseModel
}

// TableName 指定表名
func (RecruitmentConfig) TableName() string { return "recruitment_config" }
