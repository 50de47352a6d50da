// Package events publishes and consumes the admin audit trail over NATS.
package events

import (
	"encoding/json"
	"time"

	"jobboard/internal/errors"

	"github.com/google/uuid"
)

type Action string

const (
	ActionLogin            Action = "session.login"
	ActionLogout           Action = "session.logout"
	ActionProfileUpdate    Action = "session.profile"
	ActionJobCreate        Action = "job.create"
	ActionJobUpdate        Action = "job.update"
	ActionJobStatus        Action = "job.status"
	ActionJobDelete        Action = "job.delete"
	ActionJobBulk          Action = "job.bulk"
	ActionSweep            Action = "job.sweep"
	ActionAdminCreate      Action = "admin.create"
	ActionAdminPermissions Action = "admin.permissions"
	ActionAdminStatus      Action = "admin.status"
	ActionAdminDelete      Action = "admin.delete"
	ActionExport           Action = "analytics.export"
	ActionArchive          Action = "analytics.archive"
)

// AuditEvent records one successful mutation made through the console.
type AuditEvent struct {
	ID     string                 `json:"id"`
	Action Action                 `json:"action"`
	Actor  string                 `json:"actor"`
	Target string                 `json:"target,omitempty"`
	At     time.Time              `json:"at"`
	Detail map[string]interface{} `json:"detail,omitempty"`
}

func NewAuditEvent(action Action, actor, target string, detail map[string]interface{}) AuditEvent {
	return AuditEvent{
		ID:     uuid.NewString(),
		Action: action,
		Actor:  actor,
		Target: target,
		At:     time.Now().UTC(),
		Detail: detail,
	}
}

func Decode(data []byte) (AuditEvent, error) {
	var ev AuditEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return AuditEvent{}, errors.InvalidInput("decoding audit event", err)
	}
	if ev.ID == "" || ev.Action == "" {
		return AuditEvent{}, errors.InvalidInput("audit event is missing id or action", nil)
	}
	return ev, nil
}
