package models

import "time"

// SystemStatsID is the primary key of the single stats row.
const SystemStatsID uint = 1

type SystemStats struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	TotalChecks         int64     `gorm:"not null;default:0" json:"totalChecks"`
	SuccessfulChecks    int64     `gorm:"not null;default:0" json:"successfulChecks"`
	ErrorCount          int64     `gorm:"not null;default:0" json:"errorCount"`
	AverageResponseTime float64   `gorm:"not null;default:0" json:"averageResponseTime"` // milliseconds
	LastUpdated         time.Time `json:"lastUpdated"`
}

// Record folds one check into the counters. The average is the running mean
// over TotalChecks.
func (s *SystemStats) Record(responseTime int64, failed bool, now time.Time) {
	total := s.TotalChecks + 1
	s.AverageResponseTime = (s.AverageResponseTime*float64(s.TotalChecks) + float64(responseTime)) / float64(total)
	s.TotalChecks = total

	if failed {
		s.ErrorCount++
	} else {
		s.SuccessfulChecks++
	}

	s.LastUpdated = now
}
