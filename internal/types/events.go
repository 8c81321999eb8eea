package types

type EventType string

const (
	EventAppointmentCheck  EventType = "appointment_check"
	EventMonitoringStarted EventType = "monitoring_started"
	EventMonitoringStopped EventType = "monitoring_stopped"
	EventSettingsUpdated   EventType = "settings_updated"
	EventLogsCleared       EventType = "logs_cleared"
	EventAuthenticated     EventType = "authenticated"
)

// Event is the envelope pushed to dashboard clients over the WebSocket.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// ClientMessage is what a dashboard client sends to the server.
type ClientMessage struct {
	Type   string `json:"type"`
	UserID uint   `json:"userId"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
