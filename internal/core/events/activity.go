package events

import (
	"time"

	"github.com/google/uuid"
)

// TypeAdminActivity is published for every administrative mutation. The
// activity logger subscribes to it; publishers use PublishSync so the audit
// record is written before the mutating call returns.
const TypeAdminActivity = "admin.activity"

type ActivityPayload struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	Resource   string `json:"resource"`
	ResourceID string `json:"resource_id,omitempty"`
	Details    string `json:"details,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

func NewActivityEvent(payload ActivityPayload) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TypeAdminActivity,
		Timestamp: time.Now(),
		Data:      payload,
	}
}
