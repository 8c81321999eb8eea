package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/monocle-dev/visawatch/internal/models"
	"github.com/monocle-dev/visawatch/internal/monitors"
	"github.com/monocle-dev/visawatch/internal/scheduler"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

var ErrNoSettings = errors.New("No monitoring settings found")

const (
	DefaultRecentChecks = 10
	DefaultProbeTimeout = 30 * time.Second
	DefaultEmbassy      = "Nairobi Embassy"

	checkErrorMessage    = "Error checking appointment availability"
	checkCanceledMessage = "Appointment check canceled"
)

// Notifier is the outbound alert channel. Both methods are best effort from
// the service's point of view.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, message string) error
	SendTelegram(ctx context.Context, botToken, chatID, text string) error
}

// Broadcaster pushes events to a user's live dashboard.
type Broadcaster interface {
	Broadcast(userID uint, event types.Event)
}

// Result is what a single availability check reports back.
type Result struct {
	IsAvailable  bool   `json:"isAvailable"`
	Message      string `json:"message"`
	ResponseTime int64  `json:"responseTime"`
	Error        string `json:"error,omitempty"`
}

type Status struct {
	IsActive     bool                       `json:"isActive"`
	Settings     *models.MonitoringSettings `json:"settings"`
	RecentChecks []models.AppointmentCheck  `json:"recentChecks"`
	LastCheck    *models.AppointmentCheck   `json:"lastCheck"`
}

type Options struct {
	Store        store.Store
	Prober       monitors.Prober
	Notifier     Notifier
	Broadcaster  Broadcaster
	Scheduler    *scheduler.Scheduler
	Logger       *zap.Logger
	ProbeTimeout time.Duration
	Embassy      string
}

// Service owns the per-user monitoring lifecycle: one ticker per active
// user, each tick running a check that is persisted, notified, counted and
// broadcast.
type Service struct {
	store        store.Store
	prober       monitors.Prober
	notifier     Notifier
	events       Broadcaster
	scheduler    *scheduler.Scheduler
	log          *zap.Logger
	probeTimeout time.Duration
	embassy      string

	// lifecycle serializes start, stop and settings saves so isActive always
	// matches the scheduler.
	lifecycle sync.Mutex

	now          func() time.Time
	intervalUnit time.Duration
}

func NewService(opts Options) *Service {
	s := &Service{
		store:        opts.Store,
		prober:       opts.Prober,
		notifier:     opts.Notifier,
		events:       opts.Broadcaster,
		scheduler:    opts.Scheduler,
		log:          opts.Logger,
		probeTimeout: opts.ProbeTimeout,
		embassy:      opts.Embassy,
		now:          time.Now,
		intervalUnit: time.Second,
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}

	if s.scheduler == nil {
		s.scheduler = scheduler.NewScheduler(s.log)
	}

	if s.probeTimeout <= 0 {
		s.probeTimeout = DefaultProbeTimeout
	}

	if s.embassy == "" {
		s.embassy = DefaultEmbassy
	}

	return s
}

func (s *Service) broadcast(userID uint, eventType types.EventType, data any) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(userID, types.Event{Type: eventType, Data: data})
}

// StartMonitoring registers a ticker at the user's configured interval,
// replacing any ticker already running.
func (s *Service) StartMonitoring(ctx context.Context, userID uint) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	settings, err := s.store.GetMonitoringSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSettings
		}
		return fmt.Errorf("load settings: %w", err)
	}

	s.scheduler.Remove(userID)
	s.schedule(userID, settings.CheckInterval)

	settings.IsActive = true
	if _, err := s.store.UpsertMonitoringSettings(ctx, settings); err != nil {
		s.scheduler.Remove(userID)
		return fmt.Errorf("persist active flag: %w", err)
	}

	s.activity(ctx, userID, types.ActionMonitoringStarted,
		fmt.Sprintf("Monitoring started for %s visa appointments (%ds interval)", settings.VisaType, settings.CheckInterval), nil)

	s.log.Info("monitoring started",
		zap.Uint("user_id", userID),
		zap.String("visa_type", settings.VisaType),
		zap.Int("interval_seconds", settings.CheckInterval),
	)

	s.broadcast(userID, types.EventMonitoringStarted, map[string]bool{"isActive": true})

	return nil
}

func (s *Service) schedule(userID uint, intervalSeconds int) {
	s.scheduler.Add(userID, time.Duration(intervalSeconds)*s.intervalUnit, func(ctx context.Context) {
		s.runCheck(ctx, userID, types.ActionScheduledCheck)
	})
}

// StopMonitoring cancels the user's ticker. Stopping an idle user is not an
// error, and it is safe to call from inside a tick.
func (s *Service) StopMonitoring(ctx context.Context, userID uint) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.scheduler.Remove(userID)

	settings, err := s.store.GetMonitoringSettings(ctx, userID)

	switch {
	case err == nil:
		settings.IsActive = false
		if _, err := s.store.UpsertMonitoringSettings(ctx, settings); err != nil {
			return fmt.Errorf("persist active flag: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("load settings: %w", err)
	}

	s.activity(ctx, userID, types.ActionMonitoringStopped, "Monitoring stopped", nil)
	s.log.Info("monitoring stopped", zap.Uint("user_id", userID))

	s.broadcast(userID, types.EventMonitoringStopped, map[string]bool{"isActive": false})

	return nil
}

func (s *Service) IsMonitoringActive(userID uint) bool {
	return s.scheduler.Has(userID)
}

func (s *Service) GetMonitoringStatus(ctx context.Context, userID uint) (*Status, error) {
	status := &Status{IsActive: s.IsMonitoringActive(userID)}

	settings, err := s.store.GetMonitoringSettings(ctx, userID)
	switch {
	case err == nil:
		status.Settings = settings
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checks, err := s.store.GetRecentAppointmentChecks(ctx, userID, DefaultRecentChecks)
	if err != nil {
		return nil, fmt.Errorf("load recent checks: %w", err)
	}

	status.RecentChecks = checks
	if len(checks) > 0 {
		status.LastCheck = &checks[0]
	}

	return status, nil
}

// Shutdown stops every ticker. Persisted isActive flags are left as they are.
func (s *Service) Shutdown() {
	s.scheduler.Stop()
}
