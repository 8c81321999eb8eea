package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/monocle-dev/visawatch/internal/models"
	"github.com/monocle-dev/visawatch/internal/monitors"
	"github.com/monocle-dev/visawatch/internal/services"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CheckAvailability runs one on-demand check. It never fails: probe and
// persistence faults are recorded as an error check and reported in the
// result.
func (s *Service) CheckAvailability(ctx context.Context, userID uint) Result {
	return s.runCheck(ctx, userID, types.ActionManualCheck)
}

func (s *Service) runCheck(ctx context.Context, userID uint, trigger string) Result {
	// Bookkeeping after the probe must survive a stop issued mid-tick.
	persistCtx := context.WithoutCancel(ctx)
	start := s.now()

	result, err := s.check(ctx, persistCtx, userID, trigger, start)

	// A stop or a departed client canceled the probe. Nothing was checked.
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		s.log.Debug("appointment check canceled",
			zap.Uint("user_id", userID),
			zap.String("trigger", trigger),
		)
		return Result{Message: checkCanceledMessage, Error: err.Error()}
	}

	if err != nil {
		result = s.recordFailure(persistCtx, userID, err, s.elapsed(start))
	}

	s.broadcast(userID, types.EventAppointmentCheck, result)

	return result
}

func (s *Service) elapsed(start time.Time) int64 {
	return s.now().Sub(start).Milliseconds()
}

func (s *Service) check(ctx, persistCtx context.Context, userID uint, trigger string, start time.Time) (Result, error) {
	initiated := "Manual appointment availability check initiated"
	if trigger == types.ActionScheduledCheck {
		initiated = "Scheduled appointment availability check initiated"
	}

	if err := s.store.CreateActivityLog(persistCtx, &models.ActivityLog{
		UserID:  userID,
		Action:  trigger,
		Message: initiated,
	}); err != nil {
		return Result{}, fmt.Errorf("log check start: %w", err)
	}

	settings, err := s.store.GetMonitoringSettings(persistCtx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Result{}, fmt.Errorf("load settings: %w", err)
	}

	visaType := types.DefaultVisaType
	if settings != nil {
		visaType = settings.VisaType
	}

	availability, err := s.probe(ctx, types.ProbeRequest{VisaType: visaType})
	if err != nil {
		return Result{}, fmt.Errorf("probe: %w", err)
	}

	responseTime := s.elapsed(start)

	status := types.StatusNoAppointments
	if availability.Available {
		status = types.StatusAppointmentsAvailable
	}

	if err := s.store.CreateAppointmentCheck(persistCtx, &models.AppointmentCheck{
		UserID:       userID,
		Status:       status,
		Message:      availability.Message,
		ResponseTime: responseTime,
	}); err != nil {
		return Result{}, fmt.Errorf("record check: %w", err)
	}

	s.activity(persistCtx, userID, types.ActionCheckResult,
		"Appointment check completed: "+availability.Message,
		map[string]any{"responseTime": responseTime, "isAvailable": availability.Available})

	if availability.Available {
		s.handleAppointmentAvailable(persistCtx, userID, settings)
	}

	s.recordStats(persistCtx, responseTime, false)

	s.log.Debug("appointment check completed",
		zap.Uint("user_id", userID),
		zap.String("trigger", trigger),
		zap.Bool("available", availability.Available),
		zap.Int64("response_time_ms", responseTime),
	)

	return Result{
		IsAvailable:  availability.Available,
		Message:      availability.Message,
		ResponseTime: responseTime,
	}, nil
}

// probe runs the prober under the probe timeout and turns a panic into an
// error.
func (s *Service) probe(ctx context.Context, req types.ProbeRequest) (availability monitors.Availability, err error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prober panicked: %v", r)
		}
	}()

	return s.prober.Probe(probeCtx, req)
}

func (s *Service) recordFailure(ctx context.Context, userID uint, cause error, responseTime int64) Result {
	details := cause.Error()

	s.log.Warn("appointment check failed", zap.Uint("user_id", userID), zap.Error(cause))

	if err := s.store.CreateAppointmentCheck(ctx, &models.AppointmentCheck{
		UserID:       userID,
		Status:       types.StatusError,
		Message:      checkErrorMessage,
		ResponseTime: responseTime,
		ErrorDetails: &details,
	}); err != nil {
		s.log.Error("failed to record error check", zap.Uint("user_id", userID), zap.Error(err))
	}

	s.activity(ctx, userID, types.ActionCheckError,
		"Error during appointment check: "+details,
		map[string]any{"responseTime": responseTime, "error": details})

	s.recordStats(ctx, responseTime, true)

	return Result{
		IsAvailable:  false,
		Message:      checkErrorMessage,
		ResponseTime: responseTime,
		Error:        details,
	}
}

// handleAppointmentAvailable logs the find and fans out alerts. Without
// settings there is nobody to notify.
func (s *Service) handleAppointmentAvailable(ctx context.Context, userID uint, settings *models.MonitoringSettings) {
	if settings == nil {
		return
	}

	s.activity(ctx, userID, types.ActionAppointmentFound, "Appointment availability detected!", nil)

	if s.notifier == nil {
		return
	}

	if settings.EmailEnabled() {
		subject, message := services.AvailabilityEmail(settings.VisaType, s.embassy)
		s.notify(ctx, userID, "email", func() error {
			return s.notifier.SendEmail(ctx, settings.EmailAddress, subject, message)
		})
	}

	if settings.TelegramEnabled() {
		text := services.AvailabilityTelegram(settings.VisaType, s.embassy)
		s.notify(ctx, userID, "telegram", func() error {
			return s.notifier.SendTelegram(ctx, settings.TelegramBotToken, settings.TelegramChatID, text)
		})
	}
}

// notify runs one channel's send. The check is already recorded, so errors
// and panics only produce a notification_failed entry.
func (s *Service) notify(ctx context.Context, userID uint, channel string, send func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.notificationFailed(ctx, userID, channel, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := send(); err != nil {
		s.notificationFailed(ctx, userID, channel, err)
	}
}

func (s *Service) notificationFailed(ctx context.Context, userID uint, channel string, err error) {
	s.log.Warn("notification failed",
		zap.Uint("user_id", userID),
		zap.String("channel", channel),
		zap.Error(err),
	)

	s.activity(ctx, userID, types.ActionNotificationFailed,
		fmt.Sprintf("Failed to send %s notification: %v", channel, err),
		map[string]any{"channel": channel})
}

func (s *Service) recordStats(ctx context.Context, responseTime int64, failed bool) {
	if _, err := s.store.RecordCheckStats(ctx, responseTime, failed); err != nil {
		if errors.Is(err, store.ErrStatsMissing) {
			s.log.Warn("system stats row missing, check not counted")
			return
		}
		s.log.Error("failed to update system stats", zap.Error(err))
	}
}

// activity appends an audit entry. Failures are logged, never returned.
func (s *Service) activity(ctx context.Context, userID uint, action, message string, metadata map[string]any) {
	entry := &models.ActivityLog{
		UserID:  userID,
		Action:  action,
		Message: message,
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.store.CreateActivityLog(ctx, entry); err != nil {
		s.log.Error("failed to write activity log",
			zap.Uint("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
