package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ai_prompt_factory/config"
	"ai_prompt_factory/logger"
	"ai_prompt_factory/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeJobs struct {
	runs    atomic.Int32
	block   chan struct{}
	started chan struct{}
	err     error
}

func (f *fakeJobs) RunDaily(ctx context.Context) error {
	f.runs.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakeJobs) DailyAnalytics(context.Context) (models.DailyReport, error) {
	return models.DailyReport{}, nil
}

func (f *fakeJobs) WeeklyReport(context.Context) (models.WeeklyReport, error) {
	return models.WeeklyReport{}, nil
}

func (f *fakeJobs) HealthCheck(context.Context) error { return nil }

func (f *fakeJobs) RefreshProductStats(context.Context) (int, error) { return 0, nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Scheduler.Timezone = "UTC"
	return cfg
}

func waitStopped(t *testing.T, s *Scheduler) {
	t.Helper()
	select {
	case <-s.Stop().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewRegistersTasks(t *testing.T) {
	s, err := New(testConfig(), &fakeJobs{}, logger.Discard())
	require.NoError(t, err)
	s.Start()
	defer waitStopped(t, s)

	status := s.Status()
	names := make([]string, 0, len(status))
	for _, st := range status {
		names = append(names, st.Name)
		assert.NotEmpty(t, st.NextRun, st.Name)
	}
	assert.Equal(t, []string{
		TaskDailyGeneration, TaskDailyAnalytics, TaskWeeklyReport, TaskHealthCheck, TaskStatsRefresh,
	}, names)
	assert.Contains(t, status[0].Description, "09:00")
}

func TestNewOptionalTasksDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.HealthCheck = false
	cfg.Whop.StatsEnabled = false
	s, err := New(cfg, &fakeJobs{}, logger.Discard())
	require.NoError(t, err)
	defer waitStopped(t, s)
	assert.Len(t, s.Status(), 3)
}

func TestNewDebugMode(t *testing.T) {
	cfg := testConfig()
	cfg.Debug.Enabled = true
	cfg.Debug.GenerationFreq = 60
	s, err := New(cfg, &fakeJobs{}, logger.Discard())
	require.NoError(t, err)
	defer waitStopped(t, s)
	assert.Contains(t, s.Status()[0].Description, "60")
}

func TestNewInvalidTime(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.GenerationTime = "25:00"
	_, err := New(cfg, &fakeJobs{}, logger.Discard())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Scheduler.Timezone = "Nowhere/City"
	_, err = New(cfg, &fakeJobs{}, logger.Discard())
	assert.Error(t, err)
}

func TestTriggerUnknownTask(t *testing.T) {
	s, err := New(testConfig(), &fakeJobs{}, logger.Discard())
	require.NoError(t, err)
	defer waitStopped(t, s)
	assert.ErrorIs(t, s.Trigger("nope"), ErrUnknownTask)
}

func TestTriggerSkipsOverlap(t *testing.T) {
	jobs := &fakeJobs{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s, err := New(testConfig(), jobs, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, s.Trigger(TaskDailyGeneration))
	<-jobs.started

	assert.ErrorIs(t, s.Trigger(TaskDailyGeneration), ErrTaskRunning)
	assert.True(t, s.Status()[0].IsRunning)

	close(jobs.block)
	waitStopped(t, s)
	assert.Equal(t, int32(1), jobs.runs.Load())
	assert.False(t, s.Status()[0].IsRunning)
	assert.NotEmpty(t, s.Status()[0].LastRun)
}

func TestTriggerRecordsError(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("boom")}
	s, err := New(testConfig(), jobs, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, s.Trigger(TaskDailyGeneration))
	waitStopped(t, s)
	assert.Equal(t, "boom", s.Status()[0].LastError)
}

func TestStopCancelsRunningTask(t *testing.T) {
	jobs := &fakeJobs{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s, err := New(testConfig(), jobs, logger.Discard())
	require.NoError(t, err)
	s.Start()

	require.NoError(t, s.Trigger(TaskDailyGeneration))
	<-jobs.started
	waitStopped(t, s)
	assert.Equal(t, context.Canceled.Error(), s.Status()[0].LastError)
}

func TestTriggerAfterStopRejected(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New(testConfig(), jobs, logger.Discard())
	require.NoError(t, err)

	waitStopped(t, s)
	assert.ErrorIs(t, s.Trigger(TaskDailyGeneration), ErrStopped)
	assert.Zero(t, jobs.runs.Load())
	assert.False(t, s.Status()[0].IsRunning)
}

func TestTriggerConcurrentWithStop(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New(testConfig(), jobs, logger.Discard())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Trigger(TaskHealthCheck)
			if err != nil && !errors.Is(err, ErrStopped) && !errors.Is(err, ErrTaskRunning) {
				t.Errorf("unexpected trigger error: %v", err)
			}
		}()
	}
	waitStopped(t, s)
	wg.Wait()
	assert.ErrorIs(t, s.Trigger(TaskHealthCheck), ErrStopped)
}
