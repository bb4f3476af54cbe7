package worker

import (
	"time"

	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

// Queue names and their job payloads. Analytics writes happen out-of-band
// from the HTTP response through these queues.
const (
	QueueSessionStart = "session.start"
	QueueSessionEnd   = "session.end"
	QueueSignupClick  = "signup.click"
)

type SessionStartJob struct {
	SessionID    uuid.UUID          `json:"session_id"`
	UserID       uuid.UUID          `json:"user_id"`
	GameID       uuid.UUID          `json:"game_id"`
	ActivityType model.ActivityType `json:"activity_type"`
	StartTime    time.Time          `json:"start_time"`
}

type SessionEndJob struct {
	SessionID uuid.UUID `json:"session_id"`
	EndTime   time.Time `json:"end_time"`
}

type SignupClickJob struct {
	SessionID  string `json:"session_id"`
	IPAddress  string `json:"ip_address"`
	Country    string `json:"country"`
	DeviceType string `json:"device_type"`
	Type       string `json:"type"`
}
