package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_AddRemoveJobs(t *testing.T) {
	s := jobs.NewScheduler(time.UTC, zap.NewNop())

	require.NoError(t, s.AddJob("b", "0 0 0 * * *", func() {}))
	require.NoError(t, s.AddJob("a", "@every 1h", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.GetJobNames())

	assert.Error(t, s.AddJob("a", "@every 1h", func() {}))
	assert.Error(t, s.AddJob("c", "not a cron expression", func() {}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetJobNames())
}

func TestScheduler_NextRunUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	s := jobs.NewScheduler(loc, zap.NewNop())
	require.NoError(t, s.AddJob("midnight", "0 0 0 * * *", func() {}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	// Entries get their next time once the scheduler runs
	require.Eventually(t, func() bool {
		next, ok := s.NextRun("midnight")
		return ok && !next.IsZero()
	}, time.Second, 10*time.Millisecond)

	next, _ := s.NextRun("midnight")
	local := next.In(loc)
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())

	_, ok := s.NextRun("missing")
	assert.False(t, ok)
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(time.UTC, zap.NewNop())

	var runs atomic.Int32
	require.NoError(t, s.AddJob("tick", "@every 1s", func() { runs.Add(1) }))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	<-s.Stop().Done()
}

type stubIssuer struct {
	created bool
	err     error
	calls   int
}

func (s *stubIssuer) EnsureCurrent(context.Context) (*domain.DailyCodeDTO, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	return &domain.DailyCodeDTO{Code: "ABC234", Date: "2024-03-13"}, s.created, nil
}

func TestDailyCodeJob_Run(t *testing.T) {
	for _, issuer := range []*stubIssuer{
		{created: true},
		{created: false},
		{err: errors.New("boom")},
	} {
		jobs.NewDailyCodeJob(issuer, zap.NewNop(), time.Second).Run()
		assert.Equal(t, 1, issuer.calls)
	}
}

type stubSweeper struct {
	removed int64
	err     error
	called  bool
}

func (s *stubSweeper) SweepExpiredSessions(ctx context.Context) (int64, error) {
	s.called = true
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return s.removed, s.err
}

func TestSessionSweepJob_Run(t *testing.T) {
	sweeper := &stubSweeper{removed: 3}
	jobs.NewSessionSweepJob(sweeper, zap.NewNop(), time.Second).Run()
	assert.True(t, sweeper.called)

	failing := &stubSweeper{err: errors.New("boom")}
	jobs.NewSessionSweepJob(failing, zap.NewNop(), time.Second).Run()
	assert.True(t, failing.called)
}

func TestRegisterJobs(t *testing.T) {
	s := jobs.NewScheduler(time.UTC, zap.NewNop())
	issuer := &stubIssuer{created: true}

	require.NoError(t, jobs.RegisterDailyCodeJob(s, issuer, zap.NewNop(), "0 0 0 * * *", time.Second, true))
	assert.Equal(t, 1, issuer.calls, "startup run")

	require.NoError(t, jobs.RegisterSessionSweepJob(s, &stubSweeper{}, zap.NewNop(), "0 */15 * * * *", time.Second))
	assert.Equal(t, []string{jobs.DailyCodeJobName, jobs.SessionSweepJobName}, s.GetJobNames())

	err := jobs.RegisterSessionSweepJob(s, &stubSweeper{}, zap.NewNop(), "0 */15 * * * *", time.Second)
	assert.Error(t, err, "duplicate name")
}
