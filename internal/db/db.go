package db

import (
	"fmt"
	"log/slog"
	"time"

	"weatherdiary/internal/auth"
	"weatherdiary/internal/diary"
	"weatherdiary/internal/jobs"
	"weatherdiary/internal/memo"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

func Connect(dsn string, log *slog.Logger) (*gorm.DB, error) {
	return Open(postgres.Open(dsn), log)
}

// Open opens gdb on any dialector with the shared gorm settings.
func Open(dialector gorm.Dialector, log *slog.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, slowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates the tables and constraints that work on every supported
// dialect.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&diary.Entry{},
		&diary.DailyWeather{},
		&memo.Memo{},
		&auth.User{},
	); err != nil {
		return err
	}

	// One cached observation per day; inserts rely on this for ON CONFLICT.
	stmts := []string{
		`create unique index if not exists uq_daily_weathers_date on daily_weathers(date);`,
		`create index if not exists idx_diaries_date_id on diaries(date, id);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}

// AutoMigrateAndIndexes runs Migrate plus the postgres-only job queue schema.
func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := Migrate(gdb); err != nil {
		return err
	}
	if err := gdb.AutoMigrate(&jobs.Job{}); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
		`create index if not exists idx_diaries_tags on diaries using gin (tags);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}
