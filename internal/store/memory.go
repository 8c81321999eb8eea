package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/monocle-dev/visawatch/internal/models"
)

// MemStore keeps everything in process memory. Each collection owns a
// sequence so ids are unique and increase monotonically.
type MemStore struct {
	mu sync.RWMutex

	users    map[uint]models.User
	settings map[uint]models.MonitoringSettings // user ID -> settings
	checks   []models.AppointmentCheck
	logs     []models.ActivityLog
	stats    *models.SystemStats

	userSeq     uint
	settingsSeq uint
	checkSeq    uint
	logSeq      uint

	now func() time.Time
}

func NewMemStore() *MemStore {
	s := &MemStore{
		users:    make(map[uint]models.User),
		settings: make(map[uint]models.MonitoringSettings),
		now:      time.Now,
	}

	s.stats = &models.SystemStats{ID: models.SystemStatsID, LastUpdated: s.now()}

	return s
}

func (s *MemStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &user, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}

	return nil, ErrNotFound
}

func (s *MemStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq++
	user.ID = s.userSeq
	user.CreatedAt = s.now()
	s.users[user.ID] = *user

	return nil
}

func (s *MemStore) GetMonitoringSettings(_ context.Context, userID uint) (*models.MonitoringSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[userID]
	if !ok {
		return nil, ErrNotFound
	}

	return &settings, nil
}

func (s *MemStore) UpsertMonitoringSettings(_ context.Context, settings *models.MonitoringSettings) (*models.MonitoringSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	updated := *settings

	if existing, ok := s.settings[settings.UserID]; ok {
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
	} else {
		s.settingsSeq++
		updated.ID = s.settingsSeq
		updated.CreatedAt = now
	}

	updated.UpdatedAt = now
	s.settings[updated.UserID] = updated

	return &updated, nil
}

func (s *MemStore) CreateAppointmentCheck(_ context.Context, check *models.AppointmentCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkSeq++
	check.ID = s.checkSeq
	if check.CheckTime.IsZero() {
		check.CheckTime = s.now()
	}
	s.checks = append(s.checks, *check)

	return nil
}

func (s *MemStore) GetRecentAppointmentChecks(_ context.Context, userID uint, limit int) ([]models.AppointmentCheck, error) {
	limit = normalizeLimit(limit, DefaultCheckLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.AppointmentCheck, 0, limit)

	// Newest first; insertion order doubles as id order.
	for i := len(s.checks) - 1; i >= 0 && len(result) < limit; i-- {
		if s.checks[i].UserID == userID {
			result = append(result, s.checks[i])
		}
	}

	return result, nil
}

func (s *MemStore) CreateActivityLog(_ context.Context, log *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logSeq++
	log.ID = s.logSeq
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now()
	}
	s.logs = append(s.logs, *log)

	return nil
}

func (s *MemStore) GetActivityLogs(_ context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	limit = normalizeLimit(limit, DefaultLogLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ActivityLog, 0, limit)

	for i := len(s.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if s.logs[i].UserID == userID {
			result = append(result, s.logs[i])
		}
	}

	// Timestamps can tie, keep id as the tiebreaker.
	sort.SliceStable(result, func(a, b int) bool {
		if result[a].Timestamp.Equal(result[b].Timestamp) {
			return result[a].ID > result[b].ID
		}
		return result[a].Timestamp.After(result[b].Timestamp)
	})

	return result, nil
}

func (s *MemStore) ClearActivityLogs(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.logs[:0]
	for _, log := range s.logs {
		if log.UserID != userID {
			kept = append(kept, log)
		}
	}

	// Drop references held past the new length.
	for i := len(kept); i < len(s.logs); i++ {
		s.logs[i] = models.ActivityLog{}
	}
	s.logs = kept

	return nil
}

func (s *MemStore) GetSystemStats(_ context.Context) (*models.SystemStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stats == nil {
		return nil, ErrStatsMissing
	}

	stats := *s.stats
	return &stats, nil
}

func (s *MemStore) RecordCheckStats(_ context.Context, responseTime int64, failed bool) (*models.SystemStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats == nil {
		return nil, ErrStatsMissing
	}

	s.stats.Record(responseTime, failed, s.now())

	stats := *s.stats
	return &stats, nil
}

func (s *MemStore) Close() error {
	return nil
}
