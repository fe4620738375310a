package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/userpanel/internal/jobs"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SessionRevoker drops every session bound to a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// AuditStore persists audit entries.
type AuditStore interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PurgeSessionsJob revokes sessions of deleted users.
type PurgeSessionsJob struct {
	Sessions SessionRevoker
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPurgeSessionsJob wires dependencies for the purge handler.
func NewPurgeSessionsJob(sessions SessionRevoker, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeSessionsJob {
	return &PurgeSessionsJob{Sessions: sessions, Logger: logger, Metrics: metrics}
}

// Handle processes TaskPurgeSessions tasks.
func (j *PurgeSessionsJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sessions == nil {
		return errors.New("purge sessions: handler not configured")
	}
	var payload PurgeSessionsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.UserID == "" {
		return fmt.Errorf("purge sessions: bad payload: %w", asynq.SkipRetry)
	}

	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskPurgeSessions)
	defer func() { err = tracker.End(err) }()

	removed, err := j.Sessions.RevokeUser(ctx, payload.UserID)
	if err != nil {
		loggerOrDefault(j.Logger).Error("purge sessions", slog.String("user_id", payload.UserID), slog.Any("error", err))
		return err
	}
	metrics.AddPurgedSessions(removed)
	loggerOrDefault(j.Logger).Info("purged sessions", slog.String("user_id", payload.UserID), slog.Int("sessions", removed))
	return nil
}

// AuditRecordJob writes queued audit entries.
type AuditRecordJob struct {
	Store   AuditStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditRecordJob wires dependencies for the audit handler.
func NewAuditRecordJob(store AuditStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditRecordJob {
	return &AuditRecordJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskAuditRecord tasks.
func (j *AuditRecordJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("audit record: handler not configured")
	}
	var payload AuditRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("audit record: bad payload: %w", asynq.SkipRetry)
	}
	if err := payload.Entry.Validate(); err != nil {
		return fmt.Errorf("audit record: %v: %w", err, asynq.SkipRetry)
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskAuditRecord)
	defer func() { err = tracker.End(err) }()

	if err := j.Store.Record(ctx, payload.Entry); err != nil {
		loggerOrDefault(j.Logger).Error("record audit", slog.String("action", payload.Entry.Action), slog.Any("error", err))
		return err
	}
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
