package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweepJobName is the name of the expired session cleanup job
const SessionSweepJobName = "session_sweep"

// SessionSweeper deletes sessions past their expiry
type SessionSweeper interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// SessionSweepJob removes expired sessions so the store does not grow with logins
type SessionSweepJob struct {
	sweeper SessionSweeper
	logger  *zap.Logger
	timeout time.Duration
}

func NewSessionSweepJob(sweeper SessionSweeper, logger *zap.Logger, timeout time.Duration) *SessionSweepJob {
	return &SessionSweepJob{sweeper: sweeper, logger: logger, timeout: timeout}
}

// Run is called by the scheduler
func (j *SessionSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.sweeper.SweepExpiredSessions(ctx)
	if err != nil {
		j.logger.Error("session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("expired sessions removed",
			zap.Int64("removed", removed),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterSessionSweepJob registers the sweep job with the scheduler
func RegisterSessionSweepJob(scheduler *Scheduler, sweeper SessionSweeper, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewSessionSweepJob(sweeper, logger, timeout)
	return scheduler.AddJob(SessionSweepJobName, cronExpr, job.Run)
}
