package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/channelsync/internal/adapters/driven/storage/memory"
	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driving"
)

// mockCoordinator records SyncCatalog invocations.
type mockCoordinator struct {
	mu     sync.Mutex
	calls  []string
	report *domain.SyncReport
	err    error
}

func (m *mockCoordinator) SyncCatalog(_ context.Context, merchantID string, platform domain.Platform) (*domain.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, domain.SyncTaskID(merchantID, platform))
	if m.report != nil {
		return m.report, m.err
	}
	return &domain.SyncReport{MerchantID: merchantID, Platform: platform, Success: true}, m.err
}

func (m *mockCoordinator) Status(_ context.Context, merchantID string, platform domain.Platform) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{MerchantID: merchantID, Platform: platform}, nil
}

func (m *mockCoordinator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestScheduler(coordinator driving.SyncCoordinator) (*Scheduler, *memory.SchedulerStore) {
	store := memory.NewSchedulerStore()
	return NewScheduler(domain.DefaultSchedulerConfig(), store, coordinator), store
}

func TestSchedulerEnsureTask(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a task with the given interval", func(t *testing.T) {
		scheduler, store := newTestScheduler(&mockCoordinator{})
		require.NoError(t, scheduler.EnsureTask(ctx, "merchant-1", domain.PlatformFacebook, 2*time.Hour))

		task, err := store.GetTask(ctx, domain.SyncTaskID("merchant-1", domain.PlatformFacebook))
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, "merchant-1", task.MerchantID)
		assert.Equal(t, domain.PlatformFacebook, task.Platform)
		assert.Equal(t, 2*time.Hour, task.Interval)
		assert.True(t, task.Enabled)
		assert.True(t, task.NextRun.After(time.Now()))
	})

	t.Run("zero interval falls back to the default", func(t *testing.T) {
		scheduler, store := newTestScheduler(&mockCoordinator{})
		require.NoError(t, scheduler.EnsureTask(ctx, "merchant-1", domain.PlatformPinterest, 0))

		task, err := store.GetTask(ctx, domain.SyncTaskID("merchant-1", domain.PlatformPinterest))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSchedulerConfig().DefaultInterval, task.Interval)
	})

	t.Run("interval change reschedules an existing task", func(t *testing.T) {
		scheduler, store := newTestScheduler(&mockCoordinator{})
		require.NoError(t, scheduler.EnsureTask(ctx, "merchant-1", domain.PlatformTikTok, time.Hour))
		require.NoError(t, scheduler.EnsureTask(ctx, "merchant-1", domain.PlatformTikTok, 30*time.Minute))

		tasks, err := store.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, 30*time.Minute, tasks[0].Interval)
	})
}

func TestSchedulerRunsDueTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("due task triggers a sync and records the result", func(t *testing.T) {
		coordinator := &mockCoordinator{report: &domain.SyncReport{Success: true, Synced: 42, Failed: 3}}
		scheduler, store := newTestScheduler(coordinator)

		taskID := domain.SyncTaskID("merchant-1", domain.PlatformFacebook)
		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
			ID:         taskID,
			MerchantID: "merchant-1",
			Platform:   domain.PlatformFacebook,
			Interval:   time.Hour,
			Enabled:    true,
			NextRun:    time.Now().Add(-time.Minute),
		}))

		scheduler.checkAndRunDueTasks(ctx)
		scheduler.wg.Wait()

		assert.Equal(t, 1, coordinator.callCount())

		task, err := store.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.True(t, task.NextRun.After(time.Now()))
		assert.False(t, task.LastRun.IsZero())
		assert.Empty(t, task.LastError)

		history, err := store.GetTaskHistory(ctx, taskID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].Success)
		assert.Equal(t, 42, history[0].ItemsSynced)
		assert.Equal(t, 3, history[0].ItemsFailed)
	})

	t.Run("future task is not run", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		scheduler, store := newTestScheduler(coordinator)

		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
			ID:         domain.SyncTaskID("merchant-1", domain.PlatformFacebook),
			MerchantID: "merchant-1",
			Platform:   domain.PlatformFacebook,
			Interval:   time.Hour,
			Enabled:    true,
			NextRun:    time.Now().Add(time.Hour),
		}))

		scheduler.checkAndRunDueTasks(ctx)
		scheduler.wg.Wait()
		assert.Equal(t, 0, coordinator.callCount())
	})

	t.Run("disabled task is skipped", func(t *testing.T) {
		coordinator := &mockCoordinator{}
		scheduler, store := newTestScheduler(coordinator)

		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
			ID:         domain.SyncTaskID("merchant-1", domain.PlatformFacebook),
			MerchantID: "merchant-1",
			Platform:   domain.PlatformFacebook,
			Interval:   time.Hour,
			Enabled:    false,
			NextRun:    time.Now().Add(-time.Minute),
		}))

		scheduler.checkAndRunDueTasks(ctx)
		scheduler.wg.Wait()
		assert.Equal(t, 0, coordinator.callCount())
	})

	t.Run("sync failure is recorded on the task", func(t *testing.T) {
		coordinator := &mockCoordinator{
			report: &domain.SyncReport{AuthRequired: true},
			err:    domain.ErrAuthExpired,
		}
		scheduler, store := newTestScheduler(coordinator)

		taskID := domain.SyncTaskID("merchant-1", domain.PlatformTikTok)
		require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
			ID:         taskID,
			MerchantID: "merchant-1",
			Platform:   domain.PlatformTikTok,
			Interval:   time.Hour,
			Enabled:    true,
			NextRun:    time.Now().Add(-time.Minute),
		}))

		scheduler.checkAndRunDueTasks(ctx)
		scheduler.wg.Wait()

		task, err := store.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, domain.ErrAuthExpired.Error(), task.LastError)
		assert.True(t, task.LastSuccess.IsZero())

		history, err := store.GetTaskHistory(ctx, taskID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.False(t, history[0].Success)
	})
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler, _ := newTestScheduler(&mockCoordinator{})

	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(context.Background())
	}()

	// Let the loop reach its ticker wait, then stop it.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
