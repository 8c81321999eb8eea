package monitoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monocle-dev/visawatch/internal/models"
	"github.com/monocle-dev/visawatch/internal/monitors"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
)

type sentEmail struct {
	to, subject, message string
}

type recordingNotifier struct {
	mu        sync.Mutex
	emails    []sentEmail
	telegrams []string
	emailErr  error
}

func (n *recordingNotifier) SendEmail(_ context.Context, to, subject, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, sentEmail{to, subject, message})
	return n.emailErr
}

func (n *recordingNotifier) SendTelegram(_ context.Context, _, chatID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.telegrams = append(n.telegrams, chatID)
	return nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []types.Event
}

func (b *recordingBroadcaster) Broadcast(_ uint, event types.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) ofType(t types.EventType) []types.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []types.Event
	for _, e := range b.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	svc      *Service
	store    *store.MemStore
	notifier *recordingNotifier
	events   *recordingBroadcaster
	probes   atomic.Int32
}

func newFixture(t *testing.T, probe monitors.ProberFunc) *fixture {
	t.Helper()

	f := &fixture{
		store:    store.NewMemStore(),
		notifier: &recordingNotifier{},
		events:   &recordingBroadcaster{},
	}

	counted := monitors.ProberFunc(func(ctx context.Context, req types.ProbeRequest) (monitors.Availability, error) {
		f.probes.Add(1)
		return probe(ctx, req)
	})

	f.svc = NewService(Options{
		Store:       f.store,
		Prober:      counted,
		Notifier:    f.notifier,
		Broadcaster: f.events,
		Logger:      zap.NewNop(),
	})
	// Intervals are read as milliseconds so tickers fire quickly.
	f.svc.intervalUnit = time.Millisecond

	t.Cleanup(f.svc.Shutdown)

	return f
}

func unavailable(context.Context, types.ProbeRequest) (monitors.Availability, error) {
	return monitors.Availability{Message: monitors.MessageNoAppointments}, nil
}

func available(context.Context, types.ProbeRequest) (monitors.Availability, error) {
	return monitors.Availability{Available: true, Message: monitors.MessageAvailable}, nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func logsWithAction(t *testing.T, s *store.MemStore, userID uint, action string) []models.ActivityLog {
	t.Helper()

	logs, err := s.GetActivityLogs(context.Background(), userID, 1000)
	if err != nil {
		t.Fatalf("GetActivityLogs: %v", err)
	}

	var out []models.ActivityLog
	for _, l := range logs {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}

func TestCheckAvailability_UpdatesStats(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
		if res.IsAvailable || res.Error != "" {
			t.Fatalf("unexpected result %+v", res)
		}
		if res.Message != monitors.MessageNoAppointments {
			t.Fatalf("message = %q", res.Message)
		}
	}

	stats, err := f.svc.GetSystemStats(ctx)
	if err != nil {
		t.Fatalf("GetSystemStats: %v", err)
	}
	if stats.TotalChecks != n || stats.SuccessfulChecks != n || stats.ErrorCount != 0 {
		t.Fatalf("unexpected counters %+v", stats)
	}

	checks, err := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 100)
	if err != nil {
		t.Fatalf("GetRecentAppointmentChecks: %v", err)
	}
	if len(checks) != n {
		t.Fatalf("expected %d checks, got %d", n, len(checks))
	}

	var sum int64
	for _, c := range checks {
		if c.Status != types.StatusNoAppointments {
			t.Fatalf("status = %q", c.Status)
		}
		sum += c.ResponseTime
	}
	if want := float64(sum) / n; math.Abs(stats.AverageResponseTime-want) > 1e-9 {
		t.Fatalf("average = %v, want %v", stats.AverageResponseTime, want)
	}

	if got := len(f.events.ofType(types.EventAppointmentCheck)); got != n {
		t.Fatalf("expected %d appointment_check events, got %d", n, got)
	}
	if got := len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionManualCheck)); got != n {
		t.Fatalf("expected %d manual_check logs, got %d", n, got)
	}
}

func TestCheckAvailability_ProbeErrorIsRecorded(t *testing.T) {
	f := newFixture(t, func(context.Context, types.ProbeRequest) (monitors.Availability, error) {
		return monitors.Availability{}, errors.New("connection refused")
	})
	ctx := context.Background()

	res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
	if res.IsAvailable {
		t.Fatal("failed check reported availability")
	}
	if res.Message != checkErrorMessage {
		t.Fatalf("message = %q", res.Message)
	}
	if res.Error == "" {
		t.Fatal("expected error detail in result")
	}

	checks, _ := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 10)
	if len(checks) != 1 || checks[0].Status != types.StatusError {
		t.Fatalf("expected one error check, got %+v", checks)
	}
	if checks[0].ErrorDetails == nil || *checks[0].ErrorDetails != res.Error {
		t.Fatalf("error details not stored: %+v", checks[0].ErrorDetails)
	}

	stats, _ := f.svc.GetSystemStats(ctx)
	if stats.TotalChecks != 1 || stats.ErrorCount != 1 || stats.SuccessfulChecks != 0 {
		t.Fatalf("unexpected counters %+v", stats)
	}

	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionCheckError)) != 1 {
		t.Fatal("expected a check_error activity log")
	}

	events := f.events.ofType(types.EventAppointmentCheck)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if got := events[0].Data.(Result); got.Error == "" {
		t.Fatal("broadcast result lost the error")
	}
}

func TestCheckAvailability_ProbePanicIsRecorded(t *testing.T) {
	f := newFixture(t, func(context.Context, types.ProbeRequest) (monitors.Availability, error) {
		panic("boom")
	})

	res := f.svc.CheckAvailability(context.Background(), types.DefaultUserID)
	if res.Error == "" {
		t.Fatal("expected panic to surface as an error result")
	}

	stats, _ := f.svc.GetSystemStats(context.Background())
	if stats.ErrorCount != 1 {
		t.Fatalf("expected error to be counted, got %+v", stats)
	}
}

func TestCheckAvailability_AvailableNotifies(t *testing.T) {
	f := newFixture(t, available)
	ctx := context.Background()

	_, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{
		VisaType:           strPtr("F1"),
		EmailNotifications: boolPtr(true),
		EmailAddress:       strPtr("applicant@example.com"),
		TelegramBotToken:   strPtr("123:abc"),
		TelegramChatID:     strPtr("42"),
	})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
	if !res.IsAvailable {
		t.Fatalf("expected availability, got %+v", res)
	}

	if len(f.notifier.emails) != 1 {
		t.Fatalf("expected one email, got %d", len(f.notifier.emails))
	}
	if f.notifier.emails[0].to != "applicant@example.com" {
		t.Fatalf("email sent to %q", f.notifier.emails[0].to)
	}
	if len(f.notifier.telegrams) != 1 || f.notifier.telegrams[0] != "42" {
		t.Fatalf("unexpected telegram sends %v", f.notifier.telegrams)
	}

	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionAppointmentFound)) != 1 {
		t.Fatal("expected an appointment_found activity log")
	}

	checks, _ := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 1)
	if checks[0].Status != types.StatusAppointmentsAvailable {
		t.Fatalf("status = %q", checks[0].Status)
	}

	events := f.events.ofType(types.EventAppointmentCheck)
	if len(events) != 1 || !events[0].Data.(Result).IsAvailable {
		t.Fatalf("expected an available appointment_check event, got %+v", events)
	}
}

func TestCheckAvailability_NotificationFailureDoesNotFailCheck(t *testing.T) {
	f := newFixture(t, available)
	f.notifier.emailErr = errors.New("smtp down")
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{
		EmailNotifications: boolPtr(true),
		EmailAddress:       strPtr("applicant@example.com"),
	}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
	if !res.IsAvailable || res.Error != "" {
		t.Fatalf("unexpected result %+v", res)
	}

	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionNotificationFailed)) != 1 {
		t.Fatal("expected a notification_failed activity log")
	}

	stats, _ := f.svc.GetSystemStats(ctx)
	if stats.SuccessfulChecks != 1 || stats.ErrorCount != 0 {
		t.Fatalf("unexpected counters %+v", stats)
	}
}

func TestCheckAvailability_NoSettingsSkipsAlerts(t *testing.T) {
	f := newFixture(t, available)

	res := f.svc.CheckAvailability(context.Background(), types.DefaultUserID)
	if !res.IsAvailable {
		t.Fatal("expected availability")
	}
	if len(f.notifier.emails) != 0 || len(f.notifier.telegrams) != 0 {
		t.Fatal("alerts sent without settings")
	}
}

func TestStartMonitoring_RequiresSettings(t *testing.T) {
	f := newFixture(t, unavailable)

	err := f.svc.StartMonitoring(context.Background(), types.DefaultUserID)
	if !errors.Is(err, ErrNoSettings) {
		t.Fatalf("expected ErrNoSettings, got %v", err)
	}
	if f.svc.IsMonitoringActive(types.DefaultUserID) {
		t.Fatal("monitoring active without settings")
	}
}

func TestStartStopMonitoring(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(10)}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	if err := f.svc.StartMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StartMonitoring: %v", err)
	}

	status, err := f.svc.GetMonitoringStatus(ctx, types.DefaultUserID)
	if err != nil {
		t.Fatalf("GetMonitoringStatus: %v", err)
	}
	if !status.IsActive || !status.Settings.IsActive {
		t.Fatalf("expected active status, got %+v", status)
	}

	waitFor(t, func() bool { return f.probes.Load() >= 2 })

	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionScheduledCheck)) == 0 {
		t.Fatal("expected scheduled_check activity logs")
	}

	if err := f.svc.StopMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StopMonitoring: %v", err)
	}

	settings, _ := f.svc.GetSettings(ctx, types.DefaultUserID)
	if settings.IsActive || f.svc.IsMonitoringActive(types.DefaultUserID) {
		t.Fatal("monitoring still active after stop")
	}

	// A tick already in flight may still land.
	after := f.probes.Load()
	time.Sleep(60 * time.Millisecond)
	if f.probes.Load() > after+1 {
		t.Fatalf("checks kept running after stop: %d -> %d", after, f.probes.Load())
	}

	if len(f.events.ofType(types.EventMonitoringStarted)) != 1 || len(f.events.ofType(types.EventMonitoringStopped)) != 1 {
		t.Fatal("expected one started and one stopped event")
	}

	status, _ = f.svc.GetMonitoringStatus(ctx, types.DefaultUserID)
	if status.LastCheck == nil || status.LastCheck.ID != status.RecentChecks[0].ID {
		t.Fatalf("last check should be the newest recent check: %+v", status)
	}
}

func TestStartMonitoring_TwiceKeepsOneTicker(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(20)}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := f.svc.StartMonitoring(ctx, types.DefaultUserID); err != nil {
			t.Fatalf("StartMonitoring: %v", err)
		}
	}

	if got := f.svc.scheduler.Status()["active_jobs"]; got != 1 {
		t.Fatalf("expected one job, got %v", got)
	}

	time.Sleep(210 * time.Millisecond)

	// One 20ms ticker fires about ten times here; two would fire about twenty.
	if got := f.probes.Load(); got > 13 {
		t.Fatalf("too many checks for a single ticker: %d", got)
	}
}

func TestStopMonitoring_IdleUserIsNoop(t *testing.T) {
	f := newFixture(t, unavailable)

	if err := f.svc.StopMonitoring(context.Background(), 99); err != nil {
		t.Fatalf("StopMonitoring: %v", err)
	}
	if len(logsWithAction(t, f.store, 99, types.ActionMonitoringStopped)) != 1 {
		t.Fatal("expected a monitoring_stopped log")
	}
}

func TestStopMonitoring_FromInsideTick(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	stopped := make(chan error, 1)
	f.svc.prober = monitors.ProberFunc(func(ctx context.Context, req types.ProbeRequest) (monitors.Availability, error) {
		if f.probes.Add(1) == 1 {
			stopped <- f.svc.StopMonitoring(context.Background(), types.DefaultUserID)
		}
		return unavailable(ctx, req)
	})

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(10)}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := f.svc.StartMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StartMonitoring: %v", err)
	}

	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("StopMonitoring: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tick never ran")
	}

	// The in-flight check still completes its bookkeeping.
	waitFor(t, func() bool {
		stats, _ := f.svc.GetSystemStats(ctx)
		return stats.TotalChecks == 1
	})

	time.Sleep(50 * time.Millisecond)
	if got := f.probes.Load(); got != 1 {
		t.Fatalf("expected a single tick, got %d", got)
	}
}

func TestSaveSettings_MergesOverDefaults(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	saved, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(120)})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	if saved.CheckInterval != 120 {
		t.Fatalf("interval = %d", saved.CheckInterval)
	}
	if saved.VisaType != types.DefaultVisaType || !saved.SoundAlerts || !saved.BrowserNotifications {
		t.Fatalf("defaults not applied: %+v", saved)
	}
	if saved.IsActive {
		t.Fatal("first save must not activate monitoring")
	}

	again, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(120)})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if again.ID != saved.ID || !again.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("upsert changed identity: %+v vs %+v", again, saved)
	}
	if again.CheckInterval != saved.CheckInterval || again.VisaType != saved.VisaType {
		t.Fatal("repeated save changed logical state")
	}

	partial, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{SoundAlerts: boolPtr(false)})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if partial.CheckInterval != 120 || partial.SoundAlerts {
		t.Fatalf("partial save lost fields: %+v", partial)
	}

	if got := len(f.events.ofType(types.EventSettingsUpdated)); got != 3 {
		t.Fatalf("expected 3 settings_updated events, got %d", got)
	}
}

func TestSaveSettings_RejectsBadEmail(t *testing.T) {
	f := newFixture(t, unavailable)

	_, err := f.svc.SaveSettings(context.Background(), types.DefaultUserID, SettingsPatch{
		EmailAddress: strPtr("not-an-address"),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) || !strings.Contains(verr.Error(), "EmailAddress") {
		t.Fatalf("expected EmailAddress validation error, got %v", err)
	}

	if settings, _ := f.svc.GetSettings(context.Background(), types.DefaultUserID); settings != nil {
		t.Fatal("invalid payload was persisted")
	}
}

func TestSaveSettings_AllowsClearingEmail(t *testing.T) {
	f := newFixture(t, unavailable)

	saved, err := f.svc.SaveSettings(context.Background(), types.DefaultUserID, SettingsPatch{
		EmailAddress: strPtr(""),
	})
	if err != nil {
		t.Fatalf("empty email rejected: %v", err)
	}
	if saved.EmailAddress != "" {
		t.Fatalf("email = %q", saved.EmailAddress)
	}
}

func TestSaveSettings_RejectsShortInterval(t *testing.T) {
	f := newFixture(t, unavailable)

	_, err := f.svc.SaveSettings(context.Background(), types.DefaultUserID, SettingsPatch{
		CheckInterval: intPtr(5),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveSettings_KeepsActiveFlagAndReschedules(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(1000)}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := f.svc.StartMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StartMonitoring: %v", err)
	}

	saved, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(10)})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if !saved.IsActive {
		t.Fatal("save while monitoring dropped the active flag")
	}
	if got := f.svc.scheduler.Interval(types.DefaultUserID); got != 10*time.Millisecond {
		t.Fatalf("ticker interval = %v", got)
	}

	waitFor(t, func() bool { return f.probes.Load() >= 1 })
}

func TestClearActivityLogs(t *testing.T) {
	f := newFixture(t, unavailable)
	ctx := context.Background()

	f.svc.CheckAvailability(ctx, types.DefaultUserID)
	f.svc.CheckAvailability(ctx, 2)

	if err := f.svc.ClearActivityLogs(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("ClearActivityLogs: %v", err)
	}

	logs, _ := f.svc.GetActivityLogs(ctx, types.DefaultUserID, 0)
	if len(logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(logs))
	}

	other, _ := f.svc.GetActivityLogs(ctx, 2, 0)
	if len(other) == 0 {
		t.Fatal("another user's logs were cleared")
	}

	checks, _ := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 10)
	if len(checks) != 1 {
		t.Fatal("clearing logs must keep appointment checks")
	}

	if len(f.events.ofType(types.EventLogsCleared)) != 1 {
		t.Fatal("expected a logs_cleared event")
	}
}

type panickingNotifier struct {
	recordingNotifier
}

func (n *panickingNotifier) SendEmail(context.Context, string, string, string) error {
	panic("mailer exploded")
}

func TestStopMonitoring_DropsInFlightCheck(t *testing.T) {
	probing := make(chan struct{})
	var once sync.Once

	f := newFixture(t, func(ctx context.Context, _ types.ProbeRequest) (monitors.Availability, error) {
		once.Do(func() { close(probing) })
		<-ctx.Done()
		return monitors.Availability{}, ctx.Err()
	})
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{CheckInterval: intPtr(10)}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := f.svc.StartMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StartMonitoring: %v", err)
	}

	select {
	case <-probing:
	case <-time.After(2 * time.Second):
		t.Fatal("tick never ran")
	}

	if err := f.svc.StopMonitoring(ctx, types.DefaultUserID); err != nil {
		t.Fatalf("StopMonitoring: %v", err)
	}

	// Give the canceled tick time to unwind.
	time.Sleep(50 * time.Millisecond)

	stats, _ := f.svc.GetSystemStats(ctx)
	if stats.TotalChecks != 0 || stats.ErrorCount != 0 {
		t.Fatalf("canceled check was counted: %+v", stats)
	}

	checks, _ := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 10)
	if len(checks) != 0 {
		t.Fatalf("canceled check was stored: %+v", checks)
	}
	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionCheckError)) != 0 {
		t.Fatal("canceled check logged as an error")
	}
	if got := len(f.events.ofType(types.EventAppointmentCheck)); got != 0 {
		t.Fatalf("canceled check was broadcast %d times", got)
	}
}

func TestCheckAvailability_CanceledRequestIsNotRecorded(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, _ types.ProbeRequest) (monitors.Availability, error) {
		<-ctx.Done()
		return monitors.Availability{}, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
	if res.IsAvailable || res.Error == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	stats, _ := f.svc.GetSystemStats(context.Background())
	if stats.TotalChecks != 0 {
		t.Fatalf("canceled check was counted: %+v", stats)
	}
}

func TestCheckAvailability_ProbeTimeoutIsRecorded(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, _ types.ProbeRequest) (monitors.Availability, error) {
		<-ctx.Done()
		return monitors.Availability{}, ctx.Err()
	})
	f.svc.probeTimeout = 10 * time.Millisecond

	res := f.svc.CheckAvailability(context.Background(), types.DefaultUserID)
	if res.Error == "" {
		t.Fatal("expected a timeout error")
	}

	stats, _ := f.svc.GetSystemStats(context.Background())
	if stats.ErrorCount != 1 {
		t.Fatalf("timeout not counted as an error: %+v", stats)
	}
}

func TestCheckAvailability_NotifierPanicKeepsSingleCheck(t *testing.T) {
	f := newFixture(t, available)
	f.svc.notifier = &panickingNotifier{}
	ctx := context.Background()

	if _, err := f.svc.SaveSettings(ctx, types.DefaultUserID, SettingsPatch{
		EmailNotifications: boolPtr(true),
		EmailAddress:       strPtr("applicant@example.com"),
	}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	res := f.svc.CheckAvailability(ctx, types.DefaultUserID)
	if !res.IsAvailable || res.Error != "" {
		t.Fatalf("unexpected result %+v", res)
	}

	checks, _ := f.store.GetRecentAppointmentChecks(ctx, types.DefaultUserID, 10)
	if len(checks) != 1 || checks[0].Status != types.StatusAppointmentsAvailable {
		t.Fatalf("expected a single available check, got %+v", checks)
	}

	stats, _ := f.svc.GetSystemStats(ctx)
	if stats.TotalChecks != 1 || stats.ErrorCount != 0 {
		t.Fatalf("unexpected counters %+v", stats)
	}

	if len(logsWithAction(t, f.store, types.DefaultUserID, types.ActionNotificationFailed)) != 1 {
		t.Fatal("expected a notification_failed activity log")
	}
}
