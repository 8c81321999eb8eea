package store

import (
	"context"
	"errors"

	"github.com/monocle-dev/visawatch/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatsMissing means the singleton stats row was never seeded.
	ErrStatsMissing = errors.New("system stats row missing")
)

const (
	DefaultCheckLimit = 50
	DefaultLogLimit   = 100
)

// Store is the persistence contract shared by the in-memory and PostgreSQL
// backends. Getters return ErrNotFound when nothing matches.
type Store interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	GetMonitoringSettings(ctx context.Context, userID uint) (*models.MonitoringSettings, error)
	UpsertMonitoringSettings(ctx context.Context, settings *models.MonitoringSettings) (*models.MonitoringSettings, error)

	CreateAppointmentCheck(ctx context.Context, check *models.AppointmentCheck) error
	GetRecentAppointmentChecks(ctx context.Context, userID uint, limit int) ([]models.AppointmentCheck, error)

	CreateActivityLog(ctx context.Context, log *models.ActivityLog) error
	GetActivityLogs(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error)
	ClearActivityLogs(ctx context.Context, userID uint) error

	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
	// RecordCheckStats applies one check to the stats row atomically.
	RecordCheckStats(ctx context.Context, responseTime int64, failed bool) (*models.SystemStats, error)

	Close() error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
