package model

import "gorm.io/gorm"

// 干事角色
const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// Officer 干事表，对应 officers
// 由管理员按邮箱预先录入，首次登录时绑定 Firebase UID
type Officer struct {
	OfficerID   string  `gorm:"type:uuid;primaryKey"                        json:"officer_id"`
	FirebaseUID *string `gorm:"type:varchar(128)"                           json:"-"`
	Name        string  `gorm:"type:varchar(100);not null"                  json:"name"`
	Email       string  `gorm:"type:varchar(255);not null"                  json:"email"`
	Role        string  `gorm:"type:varchar(20);not null;default:'officer'" json:"role"`
	TeamID      *string `gorm:"type:uuid"                                   json:"team_id,omitempty"`
	IsActive    bool    `gorm:"not null;default:true"                       json:"is_active"`
	VersionedModel

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (Officer) TableName() string { return "officers" }

func (o *Officer) BeforeCreate(*gorm.DB) error {
	ensureID(&o.OfficerID)
	return nil
}
