package models

import (
	"time"

	"github.com/monocle-dev/visawatch/internal/types"
)

const DefaultCheckInterval = 60 // seconds

type MonitoringSettings struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;uniqueIndex" json:"userId"`
	CheckInterval        int       `gorm:"not null" json:"checkInterval"` // seconds
	VisaType             string    `gorm:"not null" json:"visaType"`
	SoundAlerts          bool      `gorm:"not null" json:"soundAlerts"`
	BrowserNotifications bool      `gorm:"not null" json:"browserNotifications"`
	EmailNotifications   bool      `gorm:"not null" json:"emailNotifications"`
	EmailAddress         string    `json:"emailAddress"`
	TelegramBotToken     string    `json:"telegramBotToken"`
	TelegramChatID       string    `json:"telegramChatId"`
	IsActive             bool      `gorm:"not null" json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// DefaultMonitoringSettings returns the settings a user starts with before
// saving anything.
func DefaultMonitoringSettings(userID uint) MonitoringSettings {
	return MonitoringSettings{
		UserID:               userID,
		CheckInterval:        DefaultCheckInterval,
		VisaType:             types.DefaultVisaType,
		SoundAlerts:          true,
		BrowserNotifications: true,
	}
}

func (s *MonitoringSettings) EmailEnabled() bool {
	return s.EmailNotifications && s.EmailAddress != ""
}

func (s *MonitoringSettings) TelegramEnabled() bool {
	return s.TelegramBotToken != "" && s.TelegramChatID != ""
}
