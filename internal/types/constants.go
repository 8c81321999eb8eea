package types

import (
	"strings"
)

const ContextUserKey = "user"

// DefaultUserID is the demo account every unauthenticated request acts as.
const DefaultUserID uint = 1

const (
	StatusNoAppointments        = "no_appointments"
	StatusAppointmentsAvailable = "appointments_available"
	StatusError                 = "error"
)

const (
	ActionManualCheck        = "manual_check"
	ActionScheduledCheck     = "scheduled_check"
	ActionCheckResult        = "check_result"
	ActionCheckError         = "check_error"
	ActionAppointmentFound   = "appointment_found"
	ActionMonitoringStarted  = "monitoring_started"
	ActionMonitoringStopped  = "monitoring_stopped"
	ActionSettingsUpdated    = "settings_updated"
	ActionNotificationFailed = "notification_failed"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5000",
		"http://localhost:5173",
	}
)

// AllowedOrigins merges the development defaults with CLIENT_URL and the
// comma separated ALLOWED_ORIGINS list.
func AllowedOrigins(clientURL, allowedOrigins string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
