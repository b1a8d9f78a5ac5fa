package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding; -1 always fails
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if j.failures < 0 || n <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newScheduler() *Scheduler {
	return New(logger.NewNop(), Options{MaxRetries: 2, RetryDelay: time.Millisecond})
}

func TestAddJob(t *testing.T) {
	s := newScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 7 * * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "not a schedule"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRunJob_Retries(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		success  bool
		attempts int
	}{
		{"first try", 0, true, 1},
		{"flaky", 2, true, 3},
		{"always failing", -1, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScheduler()
			job := &fakeJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJob("job")
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.attempts, result.Attempts)
			if !tt.success {
				assert.Equal(t, "boom", result.Error)
			}

			h, err := s.GetJobHistory("job")
			require.NoError(t, err)
			require.Len(t, h.Results, 1)
		})
	}
}

func TestRunJob_Unknown(t *testing.T) {
	_, err := newScheduler().RunJob("missing")
	assert.Error(t, err)
}

func TestRemoveJob(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "job", schedule: "@daily"}))
	_, err := s.RunJob("job")
	require.NoError(t, err)

	require.NoError(t, s.RemoveJob("job"))
	assert.Error(t, s.RemoveJob("job"))
	assert.Empty(t, s.GetAllJobs())

	// history survives removal
	h, err := s.GetJobHistory("job")
	require.NoError(t, err)
	assert.Len(t, h.Results, 1)
}

func TestGetJobStats(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "ok", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "bad", schedule: "@every 1h", failures: -1}))
	s.Start()
	defer s.Stop()

	for i := 0; i < 3; i++ {
		_, _ = s.RunJob("ok")
	}
	_, _ = s.RunJob("bad")

	stats := s.GetJobStats()
	require.Len(t, stats, 2)
	assert.Equal(t, 3, stats["ok"].TotalRuns)
	assert.Equal(t, 1.0, stats["ok"].SuccessRate)
	assert.NotNil(t, stats["ok"].LastRun)
	assert.Equal(t, 1, stats["bad"].FailureCount)
	assert.Equal(t, "boom", stats["bad"].LastError)

	assert.Eventually(t, func() bool { return s.GetJobStats()["ok"].NextRun != nil }, time.Second, 10*time.Millisecond)
}

func TestScheduledExecution(t *testing.T) {
	s := newScheduler()
	job := &fakeJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestStop_CancelsRetryWait(t *testing.T) {
	s := New(logger.NewNop(), Options{MaxRetries: 5, RetryDelay: time.Hour})
	job := &fakeJob{name: "slow", schedule: "@daily", failures: -1}
	require.NoError(t, s.AddJob(job))

	done := make(chan JobResult)
	go func() {
		r, _ := s.RunJob("slow")
		done <- r
	}()
	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	select {
	case r := <-done:
		assert.False(t, r.Success)
		assert.Equal(t, 1, r.Attempts)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not stop")
	}
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.add(JobResult{Attempts: i, Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, historyLimit+19, last.Attempts)
	assert.Equal(t, 0.5, h.SuccessRate())
}
