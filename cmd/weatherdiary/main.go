package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherdiary/internal/auth"
	"weatherdiary/internal/config"
	"weatherdiary/internal/db"
	"weatherdiary/internal/diary"
	httpx "weatherdiary/internal/http"
	"weatherdiary/internal/jobs"
	"weatherdiary/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	gdb, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		return err
	}

	wc := weather.NewClient(weather.Config{
		APIKey:   cfg.Weather.APIKey,
		Endpoint: cfg.Weather.Endpoint,
		City:     cfg.Weather.City,
		Units:    cfg.Weather.Units,
		Timeout:  cfg.Weather.Timeout,
	}, nil, log)

	diarySvc := &diary.Service{
		DB:                               gdb,
		Weather:                          wc,
		Log:                              log,
		Location:                         cfg.Location,
		RequireCachedWeatherForPastDates: cfg.RequireCachedWeatherForPastDates,
	}

	var jwtSvc *auth.JWT
	if cfg.JWTSecret != "" {
		jwtSvc = auth.NewJWT(cfg.JWTSecret)
	}

	jobsRepo := &jobs.Repo{DB: gdb}
	worker := &jobs.Worker{
		ID:    jobs.NewWorkerID(),
		Queue: jobsRepo,
		Log:   log,
		Handlers: map[string]jobs.Handler{
			jobs.TypeWeatherFetch: func(ctx context.Context, _ *jobs.Job) error {
				w, created, err := diarySvc.FetchDailyWeather(ctx)
				if err != nil {
					return err
				}
				log.InfoContext(ctx, "daily weather", "date", w.Date, "created", created)
				return nil
			},
		},
		Retryable: retryable,
	}

	sched := jobs.NewScheduler(cfg.WeatherFetchCron, cfg.Location, jobsRepo, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(cfg, gdb, diarySvc, jwtSvc, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "auth", jwtSvc != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		<-workerDone
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	err = srv.Shutdown(shutdownCtx)
	<-workerDone
	return err
}

// retryable retries provider outages and storage errors but not responses
// the provider will keep rejecting.
func retryable(err error) bool {
	var we *weather.Error
	if errors.As(err, &we) {
		return we.Retryable()
	}
	return true
}
