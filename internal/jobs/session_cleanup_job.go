package jobs

import (
	"context"

	"go.uber.org/zap"
)

const SessionCleanupJobName = "session_cleanup"

// ExpiredPurger deletes expired sign-in state
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (sessions, tokens int64, err error)
}

type SessionCleanupJob struct {
	purger ExpiredPurger
	logger *zap.Logger
}

func NewSessionCleanupJob(purger ExpiredPurger, logger *zap.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{purger: purger, logger: logger}
}

func (j *SessionCleanupJob) Name() string { return SessionCleanupJobName }

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	sessions, tokens, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if sessions > 0 || tokens > 0 {
		j.logger.Info("expired sign-in state removed",
			zap.Int64("sessions", sessions),
			zap.Int64("reset_tokens", tokens))
	}
	return nil
}
