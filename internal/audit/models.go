package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names a lifecycle change to a voter record.
type Action string

const (
	ActionDisabled Action = "voter_disabled"
	ActionEnabled  Action = "voter_enabled"
	ActionDeleted  Action = "voter_deleted"
	ActionImported Action = "voter_import_completed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	EPICNo    string            `json:"epic_no,omitempty"`
	Actor     string            `json:"actor,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
