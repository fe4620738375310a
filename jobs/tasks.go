package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/userpanel/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPurgeSessions revokes every live session of a deleted user.
	TaskPurgeSessions = "user:purge_sessions"
	// TaskAuditRecord persists an audit entry outside the request path.
	TaskAuditRecord = "audit:record"
)

// PurgeSessionsPayload identifies the user whose sessions are revoked.
type PurgeSessionsPayload struct {
	UserID string `json:"user_id"`
}

// AuditRecordPayload wraps an audit entry.
type AuditRecordPayload struct {
	Entry shared.AuditLog `json:"entry"`
}

// NewPurgeSessionsTask constructs a session purge task. The task id is
// derived from the user so duplicate purges collapse in the queue.
func NewPurgeSessionsTask(userID string) (*asynq.Task, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("jobs: purge sessions: empty user id")
	}
	data, err := json.Marshal(PurgeSessionsPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeSessions, data, asynq.TaskID(TaskPurgeSessions+":"+userID), asynq.MaxRetry(5)), nil
}

// NewAuditRecordTask constructs an audit task for entry.
func NewAuditRecordTask(entry shared.AuditLog) (*asynq.Task, error) {
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("jobs: audit record: %w", err)
	}
	data, err := json.Marshal(AuditRecordPayload{Entry: entry})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data, asynq.TaskID(uuid.NewString()), asynq.MaxRetry(10)), nil
}
