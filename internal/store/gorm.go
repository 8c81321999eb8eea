package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monocle-dev/visawatch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists to PostgreSQL through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) GetMonitoringSettings(ctx context.Context, userID uint) (*models.MonitoringSettings, error) {
	var settings models.MonitoringSettings

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, notFound(err)
	}

	return &settings, nil
}

func (s *GormStore) UpsertMonitoringSettings(ctx context.Context, settings *models.MonitoringSettings) (*models.MonitoringSettings, error) {
	updated := *settings
	updated.ID = 0
	updated.UpdatedAt = time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MonitoringSettings

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", settings.UserID).
			First(&existing).Error

		switch {
		case err == nil:
			updated.ID = existing.ID
			updated.CreatedAt = existing.CreatedAt
			return tx.Select("*").Omit("User").Save(&updated).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			updated.CreatedAt = updated.UpdatedAt
			return tx.Omit("User").Create(&updated).Error
		default:
			return err
		}
	})

	if err != nil {
		return nil, fmt.Errorf("upsert monitoring settings: %w", err)
	}

	return &updated, nil
}

func (s *GormStore) CreateAppointmentCheck(ctx context.Context, check *models.AppointmentCheck) error {
	if check.CheckTime.IsZero() {
		check.CheckTime = time.Now()
	}
	return s.db.WithContext(ctx).Omit("User").Create(check).Error
}

func (s *GormStore) GetRecentAppointmentChecks(ctx context.Context, userID uint, limit int) ([]models.AppointmentCheck, error) {
	var checks []models.AppointmentCheck

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_time DESC, id DESC").
		Limit(normalizeLimit(limit, DefaultCheckLimit)).
		Find(&checks).Error

	return checks, err
}

func (s *GormStore) CreateActivityLog(ctx context.Context, log *models.ActivityLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	return s.db.WithContext(ctx).Omit("User").Create(log).Error
}

func (s *GormStore) GetActivityLogs(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(normalizeLimit(limit, DefaultLogLimit)).
		Find(&logs).Error

	return logs, err
}

func (s *GormStore) ClearActivityLogs(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ActivityLog{}).Error
}

func (s *GormStore) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	var stats models.SystemStats

	if err := s.db.WithContext(ctx).First(&stats, models.SystemStatsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsMissing
		}
		return nil, err
	}

	return &stats, nil
}

func (s *GormStore) RecordCheckStats(ctx context.Context, responseTime int64, failed bool) (*models.SystemStats, error) {
	var stats models.SystemStats

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stats, models.SystemStatsID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStatsMissing
			}
			return err
		}

		stats.Record(responseTime, failed, time.Now())

		return tx.Save(&stats).Error
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
