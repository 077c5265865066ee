package jobs

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openPostgresRepo runs against TEST_DATABASE_URL inside a transaction that is
// rolled back at cleanup, so existing jobs are never touched.
func openPostgresRepo(t *testing.T) (*Repo, *gorm.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	tx := gdb.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
		_ = sqlDB.Close()
	})

	require.NoError(t, tx.AutoMigrate(&Job{}))
	require.NoError(t, tx.Exec(`delete from jobs`).Error)
	return &Repo{DB: tx}, tx
}

func loadJob(t *testing.T, tx *gorm.DB, id uint64) Job {
	t.Helper()
	var j Job
	require.NoError(t, tx.First(&j, id).Error)
	return j
}

func TestRepo_ClaimLifecycle(t *testing.T) {
	repo, tx := openPostgresRepo(t)
	ctx := context.Background()
	scheduled := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Enqueue(ctx, TypeWeatherFetch, WeatherFetchPayload{ScheduledAt: scheduled}, time.Now().Add(-time.Hour)))

	job, err := repo.Claim(ctx, "worker-a")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, TypeWeatherFetch, job.Type)
	assert.Equal(t, StatusRunning, job.Status)
	require.NotNil(t, job.LockedBy)
	assert.Equal(t, "worker-a", *job.LockedBy)

	var payload WeatherFetchPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.True(t, scheduled.Equal(payload.ScheduledAt))

	again, err := repo.Claim(ctx, "worker-b")
	require.NoError(t, err)
	assert.Nil(t, again, "a running job is not claimed twice")

	require.NoError(t, repo.RetryLater(ctx, job.ID, 1, time.Now().Add(time.Hour), "provider down"))
	stored := loadJob(t, tx, job.ID)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.Nil(t, stored.LockedBy)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "provider down", *stored.LastError)

	notDue, err := repo.Claim(ctx, "worker-b")
	require.NoError(t, err)
	assert.Nil(t, notDue)

	require.NoError(t, tx.Exec(`update jobs set run_at = now() - interval '1 minute' where id = ?`, job.ID).Error)
	retried, err := repo.Claim(ctx, "worker-b")
	require.NoError(t, err)
	require.NotNil(t, retried)
	assert.Equal(t, job.ID, retried.ID)
	assert.Equal(t, 1, retried.Attempts)

	require.NoError(t, repo.MarkDone(ctx, job.ID))
	assert.Equal(t, StatusDone, loadJob(t, tx, job.ID).Status)

	none, err := repo.Claim(ctx, "worker-b")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRepo_ClaimRequeuesStaleJobs(t *testing.T) {
	repo, tx := openPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, TypeWeatherFetch, WeatherFetchPayload{}, time.Now().Add(-time.Hour)))
	job, err := repo.Claim(ctx, "worker-dead")
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, tx.Exec(`update jobs set locked_at = now() - interval '10 minutes' where id = ?`, job.ID).Error)

	taken, err := repo.Claim(ctx, "worker-alive")
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, job.ID, taken.ID)
	require.NotNil(t, taken.LockedBy)
	assert.Equal(t, "worker-alive", *taken.LockedBy)
}

func TestRepo_MarkFailed(t *testing.T) {
	repo, tx := openPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, TypeWeatherFetch, WeatherFetchPayload{}, time.Now().Add(-time.Hour)))
	job, err := repo.Claim(ctx, "worker-a")
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, repo.MarkFailed(ctx, job.ID, "invalid api key"))
	stored := loadJob(t, tx, job.ID)
	assert.Equal(t, StatusFailed, stored.Status)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "invalid api key", *stored.LastError)
}
