package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTask_LastScheduleWins(t *testing.T) {
	var task Task
	var runs, last atomic.Int32

	for i := int32(1); i <= 3; i++ {
		task.Schedule(30*time.Millisecond, func(context.Context) {
			runs.Add(1)
			last.Store(i)
		})
	}
	require.True(t, task.Pending())

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
	require.Equal(t, int32(3), last.Load())
	require.False(t, task.Pending())
}

func TestTask_CancelDropsScheduledRun(t *testing.T) {
	var task Task
	var runs atomic.Int32

	task.Schedule(20*time.Millisecond, func(context.Context) { runs.Add(1) })
	task.Cancel()
	require.False(t, task.Pending())

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, runs.Load())
}

func TestTask_RescheduleCancelsRunningContext(t *testing.T) {
	var task Task
	started := make(chan struct{})
	cancelled := make(chan struct{})

	task.Schedule(0, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})
	<-started

	task.Schedule(time.Hour, func(context.Context) {})
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running task was not cancelled")
	}
	task.Cancel()
}
