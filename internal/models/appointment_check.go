package models

import (
	"time"
)

type AppointmentCheck struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"userId"`
	CheckTime    time.Time `gorm:"not null;index" json:"checkTime"`
	Status       string    `gorm:"not null" json:"status"` // "no_appointments", "appointments_available", "error"
	Message      string    `json:"message"`
	ResponseTime int64     `gorm:"not null" json:"responseTime"` // milliseconds
	ErrorDetails *string   `json:"errorDetails,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
