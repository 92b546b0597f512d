package domain

import "time"

type EventType string

const (
	EventSessionLoaded   EventType = "session_loaded"
	EventLogin           EventType = "login"
	EventLogout          EventType = "logout"
	EventProgress        EventType = "progress"
	EventLanguageChanged EventType = "language_changed"
)

// Event 是发布到消息队列中的状态变更记录
type Event struct {
	Type       EventType `json:"type"`
	EmployeeID string    `json:"employeeId,omitempty"`
	CompanyID  string    `json:"companyId,omitempty"`
	XP         int       `json:"xp,omitempty"`
	Level      int       `json:"level,omitempty"`
	XPGained   int       `json:"xpGained,omitempty"`
	Language   string    `json:"language,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
