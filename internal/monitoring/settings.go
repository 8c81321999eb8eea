package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/monocle-dev/visawatch/internal/models"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

// SettingsPatch carries the fields a client wants to change. Nil fields keep
// their current (or default) value. isActive is owned by the lifecycle and
// cannot be set here.
type SettingsPatch struct {
	CheckInterval        *int    `json:"checkInterval" binding:"omitempty,min=10,max=86400"`
	VisaType             *string `json:"visaType" binding:"omitempty,oneof=B1B2 F1 H1B J1"`
	SoundAlerts          *bool   `json:"soundAlerts"`
	BrowserNotifications *bool   `json:"browserNotifications"`
	EmailNotifications   *bool   `json:"emailNotifications"`
	EmailAddress         *string `json:"emailAddress" binding:"omitempty,email,max=254"`
	TelegramBotToken     *string `json:"telegramBotToken" binding:"omitempty,max=128"`
	TelegramChatID       *string `json:"telegramChatId" binding:"omitempty,max=64"`
}

// ValidationError marks a settings payload the client has to fix.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate applies the binding tags, so callers outside gin get the same
// rules as the HTTP handler.
func (p SettingsPatch) Validate() error {
	if err := binding.Validator.ValidateStruct(p); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func (p SettingsPatch) apply(s *models.MonitoringSettings) {
	if p.CheckInterval != nil {
		s.CheckInterval = *p.CheckInterval
	}
	if p.VisaType != nil {
		s.VisaType = *p.VisaType
	}
	if p.SoundAlerts != nil {
		s.SoundAlerts = *p.SoundAlerts
	}
	if p.BrowserNotifications != nil {
		s.BrowserNotifications = *p.BrowserNotifications
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.EmailAddress != nil {
		s.EmailAddress = *p.EmailAddress
	}
	if p.TelegramBotToken != nil {
		s.TelegramBotToken = *p.TelegramBotToken
	}
	if p.TelegramChatID != nil {
		s.TelegramChatID = *p.TelegramChatID
	}
}

// GetSettings returns nil without error when the user has not saved any.
func (s *Service) GetSettings(ctx context.Context, userID uint) (*models.MonitoringSettings, error) {
	settings, err := s.store.GetMonitoringSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return settings, err
}

// SaveSettings merges patch over the stored settings (or the defaults on
// first save) and upserts them. A running ticker picks up a new interval.
func (s *Service) SaveSettings(ctx context.Context, userID uint, patch SettingsPatch) (*models.MonitoringSettings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	current, err := s.store.GetMonitoringSettings(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		defaults := models.DefaultMonitoringSettings(userID)
		current = &defaults
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	next := *current
	patch.apply(&next)
	next.UserID = userID
	next.IsActive = s.scheduler.Has(userID)

	saved, err := s.store.UpsertMonitoringSettings(ctx, &next)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(saved.CheckInterval) * s.intervalUnit
	if saved.IsActive && s.scheduler.Interval(userID) != interval {
		s.schedule(userID, saved.CheckInterval)
		s.log.Info("monitoring interval changed",
			zap.Uint("user_id", userID),
			zap.Int("interval_seconds", saved.CheckInterval),
		)
	}

	s.activity(ctx, userID, types.ActionSettingsUpdated, "Monitoring settings updated", nil)
	s.broadcast(userID, types.EventSettingsUpdated, saved)

	return saved, nil
}

func (s *Service) GetActivityLogs(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	return s.store.GetActivityLogs(ctx, userID, limit)
}

// ClearActivityLogs removes the user's audit trail. Appointment checks are
// kept.
func (s *Service) ClearActivityLogs(ctx context.Context, userID uint) error {
	if err := s.store.ClearActivityLogs(ctx, userID); err != nil {
		return err
	}

	s.broadcast(userID, types.EventLogsCleared, struct{}{})

	return nil
}

func (s *Service) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	return s.store.GetSystemStats(ctx)
}
