package jobs

import (
	"context"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"go.uber.org/zap"
)

// DailyCodeJobName is the name of the daily code rotation job
const DailyCodeJobName = "daily_code_rotation"

// DailyCodeIssuer issues a fresh daily code unless one is active for today
type DailyCodeIssuer interface {
	EnsureCurrent(ctx context.Context) (*domain.DailyCodeDTO, bool, error)
}

// DailyCodeJob rotates the student login code, normally right after midnight
type DailyCodeJob struct {
	issuer  DailyCodeIssuer
	logger  *zap.Logger
	timeout time.Duration
}

func NewDailyCodeJob(issuer DailyCodeIssuer, logger *zap.Logger, timeout time.Duration) *DailyCodeJob {
	return &DailyCodeJob{issuer: issuer, logger: logger, timeout: timeout}
}

// Run is called by the scheduler
func (j *DailyCodeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	code, created, err := j.issuer.EnsureCurrent(ctx)
	if err != nil {
		j.logger.Error("daily code rotation failed", zap.Error(err))
		return
	}
	if !created {
		j.logger.Debug("daily code still active, not rotated", zap.String("day", code.Date))
		return
	}
	j.logger.Info("daily code rotated",
		zap.String("day", code.Date),
		zap.Time("expires_at", code.ExpiresAt))
}

// RegisterDailyCodeJob registers the rotation job with the scheduler.
// With runAtStartup a code is ensured before the call returns, so the first
// student login of a fresh process does not depend on the admin.
func RegisterDailyCodeJob(scheduler *Scheduler, issuer DailyCodeIssuer, logger *zap.Logger, cronExpr string, timeout time.Duration, runAtStartup bool) error {
	job := NewDailyCodeJob(issuer, logger, timeout)

	if runAtStartup {
		job.Run()
	}

	return scheduler.AddJob(DailyCodeJobName, cronExpr, job.Run)
}
