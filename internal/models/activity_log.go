package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Action    string         `gorm:"not null" json:"action"`
	Message   string         `gorm:"not null" json:"message"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
